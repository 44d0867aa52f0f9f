package http

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// LoadOpenAPI parses and validates the embedded API document.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, err
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// swaggerDoc hands the document to swag so echo-swagger serves it as doc.json.
type swaggerDoc struct {
	json []byte
}

func (d swaggerDoc) ReadDoc() string { return string(d.json) }

var registerSwagger sync.Once

func registerSwaggerDoc(doc *openapi3.T) error {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	registerSwagger.Do(func() {
		swag.Register(swag.Name, swaggerDoc{json: raw})
	})
	return nil
}

// requestValidator rejects requests that do not match the API document.
// Paths outside the document (health, swagger) pass through.
func requestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	// match on path only, whatever host the server runs on
	doc.Servers = nil

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         true,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				if errors.Is(err, routers.ErrPathNotFound) {
					return next(c)
				}
				if errors.Is(err, routers.ErrMethodNotAllowed) {
					return c.JSON(http.StatusMethodNotAllowed, newErrorBody(http.StatusMethodNotAllowed, "method not allowed"))
				}
				return c.JSON(http.StatusBadRequest, newErrorBody(http.StatusBadRequest, err.Error()))
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				body := newErrorBody(http.StatusBadRequest, "request does not match the API document")
				body.Details = validationDetails(err)
				return c.JSON(http.StatusBadRequest, body)
			}
			return next(c)
		}
	}, nil
}

func validationDetails(err error) []string {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		details := make([]string, 0, len(multi))
		for _, e := range multi {
			details = append(details, firstLine(e.Error()))
		}
		return details
	}
	return []string{firstLine(err.Error())}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
