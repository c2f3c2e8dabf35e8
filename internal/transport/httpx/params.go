package httpx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alanyang/prompt-vault/internal/domain/record"
)

// Page reads page_size and page_token from the query string.
func Page(c *gin.Context) (record.PageRequest, error) {
	req := record.PageRequest{Token: c.Query("page_token")}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return record.PageRequest{}, fmt.Errorf("%w: page_size must be an integer", record.ErrValidation)
		}
		req.Size = n
	}
	return req, nil
}

// Version returns the expected version of a mutation. body takes precedence,
// then the If-Match header (quoted or bare), then the version query param.
func Version(c *gin.Context, body *int64) (int64, error) {
	if body != nil {
		return *body, nil
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		raw = c.Query("version")
	}
	if raw == "" {
		return 0, fmt.Errorf("%w: expected version is required", record.ErrValidation)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: version must be an integer", record.ErrValidation)
	}
	return v, nil
}

// OptionalBool parses a query flag that may be absent.
func OptionalBool(c *gin.Context, name string) (*bool, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", record.ErrValidation, name)
	}
	return &b, nil
}

// BindError wraps a JSON binding failure as a validation error. Missing
// required fields are named by their lower-cased field name.
func BindError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		missing := make([]string, 0, len(fields))
		for _, fe := range fields {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s is required", record.ErrValidation, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: %v", record.ErrValidation, err)
}

// ETag renders a version the way If-Match expects it back.
func ETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}
