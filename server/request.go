package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

// maxFormMemory bounds the part of a multipart body kept in memory.
const maxFormMemory = 8 << 20

var (
	errInvalidBody   = errors.New("invalid request body")
	errBodyTooLarge  = errors.New("request body too large")
	errUnsupportedCT = errors.New("unsupported content type")
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	// form fields share the JSON names
	d.SetAliasTag("json")
	d.RegisterConverter(json.Number(""), func(s string) reflect.Value {
		return reflect.ValueOf(json.Number(strings.TrimSpace(s)))
	})
	return d
}

// bindRequest decodes a JSON, urlencoded or multipart body into dst. An empty body
// leaves dst untouched so that field validation reports what is missing.
func bindRequest(r *http.Request, dst interface{}) error {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return fmt.Errorf("%w: %v", errUnsupportedCT, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return wrapBodyError(err)
		}
		return nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return wrapBodyError(err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return wrapBodyError(err)
		}
	default:
		return fmt.Errorf("%w: %s", errUnsupportedCT, mediaType)
	}

	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func wrapBodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}

// writeBindError maps a bindRequest failure to a 4xx response.
func writeBindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeFailure(w, http.StatusRequestEntityTooLarge, errBodyTooLarge.Error())
	case errors.Is(err, errUnsupportedCT):
		writeFailure(w, http.StatusUnsupportedMediaType, errUnsupportedCT.Error())
	default:
		writeFailure(w, http.StatusBadRequest, errInvalidBody.Error())
	}
}

// parsePositiveInt coerces a JSON number or numeric string to an integer > 0.
func parsePositiveInt(n json.Number) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
	if err != nil || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("not a positive integer: %q", n)
	}
	return int(f), nil
}

// queryInt reads a non-negative integer query parameter, returning def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}
