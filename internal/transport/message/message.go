package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainmessage "github.com/alanyang/prompt-vault/internal/domain/message"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	messagesvc "github.com/alanyang/prompt-vault/internal/service/message"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *messagesvc.Service, create ...gin.HandlerFunc) {
	rg.POST("", append(create, createMessage(svc))...)
	rg.GET("", listMessages(svc))
	rg.GET("/:id", getMessage(svc))
	rg.GET("/:id/history", messageHistory(svc))
	rg.PUT("/:id", updateMessage(svc))
	rg.DELETE("/:id", deleteMessage(svc))
}

type createMessageReq struct {
	PersonaID *record.ID         `json:"persona_id"`
	Type      domainmessage.Type `json:"type" binding:"required"`
	Title     string             `json:"title" binding:"required"`
	Content   string             `json:"content" binding:"required"`
	Summary   *string            `json:"summary"`
	Starred   bool               `json:"starred"`
}

func createMessage(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMessageReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.WriteError(c, httpx.BindError(err))
			return
		}

		m, err := svc.Create(c.Request.Context(), httpx.Owner(c), domainmessage.Draft{
			PersonaID: req.PersonaID,
			Type:      req.Type,
			Title:     req.Title,
			Content:   req.Content,
			Summary:   req.Summary,
			Starred:   req.Starred,
		})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Header("ETag", httpx.ETag(m.Version))
		c.JSON(http.StatusCreated, m)
	}
}

// noPersona as the persona_id filter selects messages linked to no persona.
const noPersona = "none"

func listMessages(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f domainmessage.Filter

		if v := c.Query("type"); v != "" {
			t := domainmessage.Type(v)
			f.Type = &t
		}
		starred, err := httpx.OptionalBool(c, "starred")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		f.Starred = starred
		switch v := c.Query("persona_id"); v {
		case "":
		case noPersona:
			f.Unlinked = true
		default:
			id := record.ID(v)
			f.PersonaID = &id
		}
		page, err := httpx.Page(c)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}

		out, err := svc.List(c.Request.Context(), httpx.Owner(c), f, page)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getMessage(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.Get(c.Request.Context(), httpx.Owner(c), c.Param("id"))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Header("ETag", httpx.ETag(m.Version))
		c.JSON(http.StatusOK, m)
	}
}

func messageHistory(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := httpx.Page(c)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		out, err := svc.History(c.Request.Context(), httpx.Owner(c), c.Param("id"), page)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

type updateMessageReq struct {
	PersonaID *record.ID `json:"persona_id"`
	Title     *string    `json:"title"`
	Content   *string    `json:"content"`
	Summary   *string    `json:"summary"`
	Starred   *bool      `json:"starred"`
	Version   *int64     `json:"version"`
}

func updateMessage(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateMessageReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.WriteError(c, httpx.BindError(err))
			return
		}
		expected, err := httpx.Version(c, req.Version)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}

		m, err := svc.Update(c.Request.Context(), httpx.Owner(c), c.Param("id"), expected, domainmessage.Patch{
			PersonaID: req.PersonaID,
			Title:     req.Title,
			Content:   req.Content,
			Summary:   req.Summary,
			Starred:   req.Starred,
		})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Header("ETag", httpx.ETag(m.Version))
		c.JSON(http.StatusOK, m)
	}
}

func deleteMessage(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected, err := httpx.Version(c, nil)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), httpx.Owner(c), c.Param("id"), expected); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
