package chi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ListAuthorsParams defines parameters for ListAuthors.
type ListAuthorsParams struct {
	// Limit caps the number of authors returned. Zero or absent returns all.
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List play ids of a corpus
	// (GET /corpora/{corpus}/plays)
	ListPlayIDs(w http.ResponseWriter, r *http.Request, corpus string)
	// Filter plays of a corpus
	// (GET /corpora/{corpus}/filter)
	FilterPlays(w http.ResponseWriter, r *http.Request, corpus string, conditions map[string]any)
	// Year coverage of a corpus
	// (GET /corpora/{corpus}/summary)
	GetSummary(w http.ResponseWriter, r *http.Request, corpus string)
	// Authors of a corpus by play count
	// (GET /corpora/{corpus}/authors)
	ListAuthors(w http.ResponseWriter, r *http.Request, corpus string, params ListAuthorsParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerOptions configures HandlerWithOptions.
type ServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds request parameters before calling the handlers.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) corpusParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var corpus string
	err := runtime.BindStyledParameterWithOptions("simple", "corpus", chi.URLParam(r, "corpus"), &corpus,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "corpus", Err: err})
		return "", false
	}
	return corpus, true
}

func (siw *serverInterfaceWrapper) ListPlayIDs(w http.ResponseWriter, r *http.Request) {
	corpus, ok := siw.corpusParam(w, r)
	if !ok {
		return
	}
	siw.handler.ListPlayIDs(w, r, corpus)
}

func (siw *serverInterfaceWrapper) FilterPlays(w http.ResponseWriter, r *http.Request) {
	corpus, ok := siw.corpusParam(w, r)
	if !ok {
		return
	}
	siw.handler.FilterPlays(w, r, corpus, conditionsFromQuery(r.URL.Query()))
}

func (siw *serverInterfaceWrapper) GetSummary(w http.ResponseWriter, r *http.Request) {
	corpus, ok := siw.corpusParam(w, r)
	if !ok {
		return
	}
	siw.handler.GetSummary(w, r, corpus)
}

func (siw *serverInterfaceWrapper) ListAuthors(w http.ResponseWriter, r *http.Request) {
	corpus, ok := siw.corpusParam(w, r)
	if !ok {
		return
	}
	var params ListAuthorsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	siw.handler.ListAuthors(w, r, corpus, params)
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.handler.HealthCheck(w, r)
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.handler.Metrics(w, r)
}

// conditionsFromQuery turns filter query parameters into conditions.
// A repeated parameter becomes a list, which the in operator treats as a set.
func conditionsFromQuery(q url.Values) map[string]any {
	conditions := make(map[string]any, len(q))
	for name, values := range q {
		switch len(values) {
		case 0:
		case 1:
			conditions[name] = values[0]
		default:
			conditions[name] = values
		}
	}
	return conditions
}

// HandlerWithOptions registers the server routes on opts.BaseRouter (a new router when nil).
func HandlerWithOptions(si ServerInterface, opts ServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{
		handler:          si,
		errorHandlerFunc: opts.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/corpora/{corpus}/plays", wrapper.ListPlayIDs)
	})
	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/corpora/{corpus}/filter", wrapper.FilterPlays)
	})
	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/corpora/{corpus}/summary", wrapper.GetSummary)
	})
	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/corpora/{corpus}/authors", wrapper.ListAuthors)
	})
	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/metrics", wrapper.Metrics)
	})
	return r
}
