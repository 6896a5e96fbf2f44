package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

// maxBody limits submission bodies.
const maxBody = 1 << 20

// formValues reads an urlencoded submission body.
func formValues(c *gin.Context) (form.Values, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	return form.Values(c.Request.PostForm), nil
}

// jsonValues reads a JSON object whose members are request keys. Scalars
// become one value, arrays several.
func jsonValues(c *gin.Context) (form.Values, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	var raw map[string]any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	values := url.Values{}
	for key, v := range raw {
		switch t := v.(type) {
		case nil:
		case []any:
			for _, item := range t {
				s, err := scalar(item)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				values.Add(key, s)
			}
		default:
			s, err := scalar(t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			values.Add(key, s)
		}
	}
	return form.Values(values), nil
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value of type %T", v)
}

func submissionValues(c *gin.Context) (form.Values, error) {
	if c.ContentType() == gin.MIMEJSON {
		return jsonValues(c)
	}
	return formValues(c)
}
