package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/types"
)

type handlers struct {
	validate *validator.Validate
}

func newHandlers() *handlers {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &handlers{validate: v}
}

func (h *handlers) listEntities(es nodeapi.EngineState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.EntityIteratorRequest
		if !h.bind(c, &req) {
			return
		}
		resp, err := es.ListEntities(c.Request.Context(), req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *handlers) listKeyValueStoreKeys(b nodeapi.Browse) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.KeyValueStoreIteratorRequest
		if !h.bind(c, &req) {
			return
		}
		resp, err := b.ListKeyValueStoreKeys(c.Request.Context(), req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// bind decodes and validates the JSON body into req. An empty body is
// an empty request. On failure it writes a 400 and returns false.
func (h *handlers) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			h.fail(c, nodeapi.NewRequestError(typeErr.Field, fmt.Errorf("cannot decode %s into %s", typeErr.Value, typeErr.Type)))
			return false
		}
		h.fail(c, nodeapi.NewRequestError("body", fmt.Errorf("malformed json: %w", err)))
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			h.fail(c, nodeapi.NewRequestError(fe.Field(), fmt.Errorf("failed on the '%s' rule", fe.Tag())))
			return false
		}
		h.fail(c, nodeapi.NewRequestError("body", err))
		return false
	}
	return true
}

func (h *handlers) fail(c *gin.Context, err error) {
	resp := toErrorResponse(err)
	if resp.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(resp.Code, resp)
}
