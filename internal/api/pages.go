package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/console"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"refPath": func(basePath string, ref view.Ref) string {
		return view.ShowPath(basePath+"/"+ref.Resource, ref.ID, view.TabSummary)
	},
	"deref": func(b *bool) bool { return b != nil && *b },
	"isRenderer": func(row view.Row, names ...string) bool {
		for _, n := range names {
			if string(row.Renderer) == n {
				return true
			}
		}
		return false
	},
}).ParseFS(templateFS, "templates/*.html"))

// pageData is shared by every HTML page.
type pageData struct {
	Title    string
	BasePath string
	Types    []models.ResourceType
	Settings settings
	Flash    string
	Error    string
	Status   int
}

func (s *Server) basePageData(r *http.Request, title string) pageData {
	return pageData{
		Title:    title,
		BasePath: s.BasePath,
		Types:    models.ResourceTypes,
		Settings: s.currentSettings(r),
	}
}

func (s *Server) renderHTML(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger().Error("rendering template", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger().Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	data := s.basePageData(r, http.StatusText(status))
	data.Error = err.Error()
	data.Status = status
	s.renderHTML(w, status, "error.html", data)
}

type indexData struct {
	pageData
	Registries []*models.Registry
}

func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	data := indexData{pageData: s.basePageData(r, "NMOS Console"), Registries: s.Registries.List()}
	data.Flash = r.URL.Query().Get("flash")
	s.renderHTML(w, http.StatusOK, "index.html", data)
}

// SettingsForm selects the Query API from the index page.
func (s *Server) SettingsForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderErrorPage(w, r, &registry.ValidationError{Message: err.Error()})
		return
	}
	queryAPI, status, msg := s.selectQueryAPI(r.PostForm.Get("query_api"), r.PostForm.Get("registry_id"))
	if status != http.StatusOK {
		data := indexData{pageData: s.basePageData(r, "NMOS Console"), Registries: s.Registries.List()}
		data.Error = msg
		s.renderHTML(w, status, "index.html", data)
		return
	}
	setQueryAPICookie(w, queryAPI, s.cookiePath())
	http.Redirect(w, r, s.BasePath+"/?flash="+url.QueryEscape("Using "+queryAPI), http.StatusSeeOther)
}

type listData struct {
	pageData
	List  *console.ListPage
	Pages []pageLink
}

type pageLink struct {
	Name string
	Href string
}

func (s *Server) ListPage(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	rc, err := s.renderContext(r)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	filter := listFilter(r)
	list, err := s.Console.List(r.Context(), rc, resourceType, filter, r.URL.Query().Get("cursor"))
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}

	data := listData{pageData: s.basePageData(r, list.Type.Label), List: list}
	if id := r.URL.Query().Get("job"); id != "" {
		data.Flash, data.Error = s.jobNotice(id)
	}
	for _, rel := range []string{"first", "prev", "next", "last"} {
		cursor, ok := list.Links[rel]
		if !ok {
			continue
		}
		q := url.Values{}
		for k, v := range list.Filter {
			q.Set(k, v)
		}
		q.Set("cursor", cursor)
		data.Pages = append(data.Pages, pageLink{Name: strings.ToUpper(rel), Href: rc.ResourcePath(resourceType) + "?" + q.Encode()})
	}
	s.renderHTML(w, http.StatusOK, "list.html", data)
}

type showData struct {
	pageData
	Page *console.Page
}

func (s *Server) ShowPage(w http.ResponseWriter, r *http.Request) {
	rc, err := s.renderContext(r)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	page, err := s.Console.Show(r.Context(), rc, chi.URLParam(r, "type"), chi.URLParam(r, "id"), chi.URLParam(r, "*"))
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	data := showData{pageData: s.basePageData(r, page.Title), Page: page}
	if id := r.URL.Query().Get("job"); id != "" {
		data.Flash, data.Error = s.jobNotice(id)
	}
	s.renderHTML(w, http.StatusOK, "show.html", data)
}

// jobNotice describes a save job for the transient notification.
func (s *Server) jobNotice(id string) (flash, errMsg string) {
	job := s.Console.Jobs().Get(id)
	if job == nil {
		return "", ""
	}
	status, jobErr := job.State()
	switch status {
	case models.JobFailed:
		return "", "Save failed: " + jobErr
	case models.JobCompleted:
		return "Element updated", ""
	default:
		return "Saving staged parameters...", ""
	}
}

type editData struct {
	pageData
	Resource string
	ID       string
	ShowURL  string
	PeerKey  string // "receiver_id" for senders, "sender_id" for receivers
	PeerID   string
	Enabled  bool
	Mode     string
	Time     string
	Modes    []string
}

func (s *Server) editData(r *http.Request, rc console.RenderContext, resourceType, id string) (*editData, error) {
	rt, ok := models.LookupResourceType(resourceType)
	if !ok {
		return nil, &view.UnknownResourceTypeError{ResourceType: resourceType}
	}
	if !rt.Connection {
		return nil, &registry.ValidationError{Message: rt.Label + " have no staged parameters"}
	}
	record, err := s.Console.Record(r.Context(), rc, resourceType, id)
	if err != nil {
		return nil, err
	}
	data := &editData{
		pageData: s.basePageData(r, "Edit "+console.Title(rt, record)),
		Resource: resourceType,
		ID:       id,
		ShowURL:  view.ShowPath(rc.ResourcePath(resourceType), id, view.TabStaged),
		PeerKey:  "receiver_id",
		Modes:    console.ActivationModes,
	}
	if resourceType == "receivers" {
		data.PeerKey = "sender_id"
	}
	data.PeerID = view.Lookup(record, "$staged."+data.PeerKey).Text()
	data.Enabled, _ = view.Lookup(record, "$staged.master_enable").Bool()
	data.Mode = view.Lookup(record, "$staged.activation.mode").Text()
	data.Time = view.Lookup(record, "$staged.activation.requested_time").Text()
	return data, nil
}

// EditPage shows the staged parameter form.
func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	rc, err := s.renderContext(r)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	data, err := s.editData(r, rc, chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	s.renderHTML(w, http.StatusOK, "edit.html", data)
}

// EditForm submits the staged parameter form as a save job.
func (s *Server) EditForm(w http.ResponseWriter, r *http.Request) {
	resourceType, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	rc, err := s.renderContext(r)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderErrorPage(w, r, &registry.ValidationError{Message: err.Error()})
		return
	}
	data, err := s.editData(r, rc, resourceType, id)
	if err != nil {
		s.renderErrorPage(w, r, err)
		return
	}

	data.PeerID = r.PostForm.Get(data.PeerKey)
	data.Enabled = r.PostForm.Get("master_enable") != ""
	data.Mode = r.PostForm.Get("mode")
	data.Time = r.PostForm.Get("requested_time")
	staged := map[string]interface{}{
		data.PeerKey:    data.PeerID,
		"master_enable": data.Enabled,
		"activation": map[string]interface{}{
			"mode":           data.Mode,
			"requested_time": data.Time,
		},
	}

	job, err := s.Console.Save(r.Context(), rc, resourceType, id, staged)
	if err != nil {
		var valErr *registry.ValidationError
		if errors.As(err, &valErr) {
			data.Error = valErr.Error()
			s.renderHTML(w, http.StatusBadRequest, "edit.html", data)
			return
		}
		s.renderErrorPage(w, r, err)
		return
	}
	http.Redirect(w, r, data.ShowURL+"?job="+url.QueryEscape(job.ID), http.StatusSeeOther)
}
