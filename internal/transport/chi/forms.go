package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/oapi-codegen/runtime"
)

// maxFormBytes caps control-event form bodies.
const maxFormBytes = 64 << 10

// controlEventForm is the body of a facet control event.
type controlEventForm struct {
	Facet  string   `schema:"facet,required"`
	Values []string `schema:"values"`
}

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func decodeControlEvent(w http.ResponseWriter, r *http.Request) (controlEventForm, error) {
	var form controlEventForm
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return form, fmt.Errorf("parse form: %w", err)
	}
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		return form, fmt.Errorf("decode form: %w", err)
	}
	return form, nil
}

// pathParam binds a required simple-style path parameter into dest.
func pathParam(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return fmt.Errorf("invalid path parameter %s: %w", name, err)
	}
	return nil
}
