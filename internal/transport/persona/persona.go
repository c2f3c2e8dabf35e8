package persona

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainpersona "github.com/alanyang/prompt-vault/internal/domain/persona"
	personasvc "github.com/alanyang/prompt-vault/internal/service/persona"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

// Register mounts the persona routes. create is wrapped with extra
// middleware (idempotency replay).
func Register(rg *gin.RouterGroup, svc *personasvc.Service, create ...gin.HandlerFunc) {
	rg.POST("", append(create, createPersona(svc))...)
	rg.GET("", listPersonas(svc))
	rg.GET("/:id", getPersona(svc))
	rg.PUT("/:id", updatePersona(svc))
	rg.DELETE("/:id", deletePersona(svc))
}

type createPersonaReq struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Prompt      string  `json:"prompt" binding:"required"`
}

func createPersona(svc *personasvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPersonaReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.WriteError(c, httpx.BindError(err))
			return
		}

		p, err := svc.Create(c.Request.Context(), httpx.Owner(c), domainpersona.Draft{
			Name:        req.Name,
			Description: req.Description,
			Prompt:      req.Prompt,
		})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Header("ETag", httpx.ETag(p.Version))
		c.JSON(http.StatusCreated, p)
	}
}

func listPersonas(svc *personasvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := httpx.Page(c)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		out, err := svc.List(c.Request.Context(), httpx.Owner(c), page)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getPersona(svc *personasvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), httpx.Owner(c), c.Param("id"))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Header("ETag", httpx.ETag(p.Version))
		c.JSON(http.StatusOK, p)
	}
}

type updatePersonaReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Prompt      *string `json:"prompt"`
	Version     *int64  `json:"version"`
}

func updatePersona(svc *personasvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePersonaReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.WriteError(c, httpx.BindError(err))
			return
		}
		expected, err := httpx.Version(c, req.Version)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}

		p, err := svc.Update(c.Request.Context(), httpx.Owner(c), c.Param("id"), expected, domainpersona.Patch{
			Name:        req.Name,
			Description: req.Description,
			Prompt:      req.Prompt,
		})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Header("ETag", httpx.ETag(p.Version))
		c.JSON(http.StatusOK, p)
	}
}

func deletePersona(svc *personasvc.Service) gin.HandlerFunc {
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
