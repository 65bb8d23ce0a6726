package console

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan-r-thorpe/nmos-js/internal/metrics"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
	"github.com/jonathan-r-thorpe/nmos-js/internal/view"
)

// DefaultCacheTTL is how long a fetched record serves tab switches.
const DefaultCacheTTL = 5 * time.Second

// enrichConcurrency bounds the lookups made to label references.
const enrichConcurrency = 4

// Back-reference lists are read in pages of backReferenceLimit, following
// "prev" links for at most backReferenceMaxPages pages.
const (
	backReferenceLimit    = 100
	backReferenceMaxPages = 10
)

// Service renders NMOS resources for the console and runs staged saves.
type Service struct {
	providers ProviderSource
	jobs      *models.JobStore
	cache     *recordCache
	logger    *zap.Logger
}

// NewService creates a Service. A zero cacheTTL uses DefaultCacheTTL.
func NewService(providers ProviderSource, jobs *models.JobStore, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobs == nil {
		jobs = models.NewJobStore()
	}
	return &Service{
		providers: providers,
		jobs:      jobs,
		cache:     newRecordCache(cacheTTL),
		logger:    logger,
	}
}

// Jobs returns the store that save jobs are recorded in.
func (s *Service) Jobs() *models.JobStore { return s.jobs }

// Page is a rendered show view.
type Page struct {
	Title    string          `json:"title"`
	Resource string          `json:"resource"`
	ID       string          `json:"id"`
	Tab      view.Tab        `json:"tab"`
	Tabs     []view.TabState `json:"tabs"`
	Rows     []view.Row      `json:"rows"`
	RawURL   string          `json:"raw_url"`
	EditURL  string          `json:"edit_url,omitempty"`
	QueryAPI string          `json:"query_api"`
	Version  string          `json:"version"`
	// Senders are the connection candidates listed on a receiver's
	// Connect tab.
	Senders []ListItem `json:"senders,omitempty"`
}

// Title formats "Sender: label", falling back to the id and then "Unknown".
func Title(rt models.ResourceType, r models.Resource) string {
	name := r.Label()
	if name == "" {
		name = r.ID()
	}
	if name == "" {
		name = "Unknown"
	}
	return rt.Singular + ": " + name
}

func lookupType(resourceType string) (models.ResourceType, error) {
	rt, ok := models.LookupResourceType(resourceType)
	if !ok {
		return models.ResourceType{}, &view.UnknownResourceTypeError{ResourceType: resourceType}
	}
	return rt, nil
}

// Record returns a resource with its Connection API documents, from the
// cache when it was fetched recently.
func (s *Service) Record(ctx context.Context, rc RenderContext, resourceType, id string) (models.Resource, error) {
	if _, err := lookupType(resourceType); err != nil {
		return nil, err
	}
	p := s.providers.For(rc.QueryAPI)
	key := cacheKey("record", rc.QueryAPI, resourceType, id)
	return s.cache.get(ctx, key, func() (models.Resource, error) {
		return p.Fetch(context.WithoutCancel(ctx), resourceType, id)
	})
}

// Show renders one tab of a resource. An unknown tab suffix renders the
// Summary tab.
func (s *Service) Show(ctx context.Context, rc RenderContext, resourceType, id, suffix string) (*Page, error) {
	rt, err := lookupType(resourceType)
	if err != nil {
		return nil, err
	}
	tab, err := view.SelectTab(resourceType, suffix)
	if err != nil {
		s.logger.Warn("falling back to summary tab",
			zap.String("resource", resourceType), zap.String("id", id), zap.Error(err))
	}
	rules, err := view.TabRules(resourceType, tab.Tab)
	if err != nil {
		return nil, err
	}

	record, err := s.Record(ctx, rc, resourceType, id)
	if err != nil {
		return nil, err
	}

	rows := view.Render(record, rules, rc.Version)
	s.resolveReferences(ctx, rc, rows)
	metrics.Renders.WithLabelValues(resourceType, string(tab.Tab)).Inc()

	basePath := rc.ResourcePath(resourceType)
	page := &Page{
		Title:    Title(rt, record),
		Resource: resourceType,
		ID:       id,
		Tab:      tab.Tab,
		Tabs:     view.TabsFor(resourceType, basePath, id, record, tab.Tab),
		Rows:     rows,
		RawURL:   s.providers.For(rc.QueryAPI).ResourceURL(resourceType, id),
		QueryAPI: rc.QueryAPI,
		Version:  rc.Version.String(),
	}
	if rt.Connection {
		page.EditURL = view.EditPath(basePath, id)
	}
	if tab.Tab == view.TabConnect && !view.Lookup(record, registry.KeyConnectionAPI).Missing() {
		senders, err := s.List(ctx, rc, "senders", nil, "")
		if err != nil {
			s.logger.Warn("listing connection candidates failed", zap.String("receiver", id), zap.Error(err))
		} else {
			page.Senders = senders.Items
		}
	}
	return page, nil
}

// resolveReferences fills in reference labels and back-reference lists.
// Lookups that fail leave the reference showing its id.
func (s *Service) resolveReferences(ctx context.Context, rc RenderContext, rows []view.Row) {
	p := s.providers.For(rc.QueryAPI)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(enrichConcurrency)

	for i := range rows {
		row := &rows[i]
		for j := range row.Refs {
			ref := &row.Refs[j]
			eg.Go(func() error {
				key := cacheKey("plain", rc.QueryAPI, ref.Resource, ref.ID)
				r, err := s.cache.get(egCtx, key, func() (models.Resource, error) {
					return p.Get(context.WithoutCancel(egCtx), ref.Resource, ref.ID)
				})
				if err != nil {
					s.logger.Debug("reference lookup failed",
						zap.String("resource", ref.Resource), zap.String("id", ref.ID), zap.Error(err))
					return nil
				}
				ref.Label = r.Label()
				return nil
			})
		}
		if row.Query != nil {
			eg.Go(func() error {
				refs, truncated, err := s.backReferences(egCtx, p, row.Query)
				if err != nil {
					s.logger.Debug("back-reference lookup failed",
						zap.String("resource", row.Query.Resource), zap.String("field", row.Query.Field), zap.Error(err))
					return nil
				}
				row.Refs = refs
				row.Truncated = truncated
				row.Empty = len(refs) == 0
				return nil
			})
		}
	}
	eg.Wait()
}

// backReferences lists the resources whose q.Field holds q.Value. Pages are
// followed towards older resources until one comes back empty; truncated is
// set when the page cap was reached first.
func (s *Service) backReferences(ctx context.Context, p Provider, q *view.RefQuery) (refs []view.Ref, truncated bool, err error) {
	seen := map[string]bool{}
	cursor := ""
	for page := 0; page < backReferenceMaxPages; page++ {
		res, err := p.List(ctx, q.Resource, registry.ListParams{
			Filter: map[string]string{q.Field: q.Value},
			Cursor: cursor,
			Limit:  backReferenceLimit,
		})
		if err != nil {
			return nil, false, err
		}
		for _, r := range res.Data {
			if seen[r.ID()] {
				continue
			}
			seen[r.ID()] = true
			refs = append(refs, view.Ref{Resource: q.Resource, ID: r.ID(), Label: r.Label()})
		}
		cursor = res.Links["prev"]
		if cursor == "" || len(res.Data) == 0 {
			return refs, false, nil
		}
	}
	return refs, true, nil
}

// ListItem is one resource in a list page.
type ListItem struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Href    string   `json:"href"`
	Columns []string `json:"columns"`
	// Active is a receiver's subscription state, when the registry reports
	// one.
	Active *bool `json:"active,omitempty"`
}

// ListPage is a page of a resource list.
type ListPage struct {
	Type    models.ResourceType `json:"type"`
	Items   []ListItem          `json:"items"`
	Filter  map[string]string   `json:"filter,omitempty"`
	Links   map[string]string   `json:"links"`
	RawURL  string              `json:"raw_url"`
	Version string              `json:"version"`
}

// List returns a page of resources. Filters on columns the type does not
// offer are ignored.
func (s *Service) List(ctx context.Context, rc RenderContext, resourceType string, filter map[string]string, cursor string) (*ListPage, error) {
	rt, err := lookupType(resourceType)
	if err != nil {
		return nil, err
	}
	applied := map[string]string{}
	for _, col := range rt.Filters {
		if v := filter[col]; v != "" {
			applied[col] = v
		}
	}

	res, err := s.providers.For(rc.QueryAPI).List(ctx, resourceType, registry.ListParams{Filter: applied, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	basePath := rc.ResourcePath(resourceType)
	items := make([]ListItem, 0, len(res.Data))
	for _, r := range res.Data {
		cols := make([]string, len(rt.Filters))
		for i, col := range rt.Filters {
			cols[i] = view.Lookup(r, col).Text()
		}
		item := ListItem{
			ID:      r.ID(),
			Label:   r.Label(),
			Href:    view.ShowPath(basePath, r.ID(), view.TabSummary),
			Columns: cols,
		}
		if resourceType == "receivers" {
			if active, ok := view.Lookup(r, "subscription.active").Bool(); ok {
				item.Active = &active
			}
		}
		items = append(items, item)
	}
	return &ListPage{
		Type:    rt,
		Items:   items,
		Filter:  applied,
		Links:   res.Links,
		RawURL:  res.URL,
		Version: rc.Version.String(),
	}, nil
}

// JobRetention is how long finished save jobs stay listed.
const JobRetention = time.Hour

// Save validates staged parameters and applies them in a background job.
// Validation failures are returned before any job starts.
func (s *Service) Save(ctx context.Context, rc RenderContext, resourceType, id string, staged map[string]interface{}) (*models.Job, error) {
	rt, err := lookupType(resourceType)
	if err != nil {
		return nil, err
	}
	if !rt.Connection {
		return nil, &registry.ValidationError{Message: fmt.Sprintf("%s have no staged parameters", resourceType)}
	}
	return s.stage(ctx, rc, rt, id, staged, resourceType+"-staged")
}

// Connect stages sender as the receiver's source and activates it
// immediately. The sender's transport file, when it has one, is staged with
// it.
func (s *Service) Connect(ctx context.Context, rc RenderContext, receiverID, senderID string) (*models.Job, error) {
	if senderID == "" {
		return nil, &registry.ValidationError{Field: "sender_id", Message: "a sender is required"}
	}
	sender, err := s.Record(ctx, rc, "senders", senderID)
	if err != nil {
		return nil, err
	}
	staged := map[string]interface{}{
		"sender_id":     senderID,
		"master_enable": true,
		"activation":    map[string]interface{}{"mode": ActivateImmediate},
	}
	if sdp := view.Lookup(sender, registry.KeyTransportFile); !sdp.Missing() {
		staged["transport_file"] = map[string]interface{}{"data": sdp.Text(), "type": TransportFileType}
	}
	rt, _ := models.LookupResourceType("receivers")
	return s.stage(ctx, rc, rt, receiverID, staged, "receivers-connect")
}

// Disconnect clears a receiver's sender and disables it immediately.
func (s *Service) Disconnect(ctx context.Context, rc RenderContext, receiverID string) (*models.Job, error) {
	staged := map[string]interface{}{
		"sender_id":     "",
		"master_enable": false,
		"activation":    map[string]interface{}{"mode": ActivateImmediate},
	}
	rt, _ := models.LookupResourceType("receivers")
	return s.stage(ctx, rc, rt, receiverID, staged, "receivers-disconnect")
}

// stage validates a staged patch and applies it in a background job.
func (s *Service) stage(ctx context.Context, rc RenderContext, rt models.ResourceType, id string, staged map[string]interface{}, jobType string) (*models.Job, error) {
	resourceType := rt.Name
	patch, err := NormalizeStaged(resourceType, staged)
	if err != nil {
		return nil, err
	}

	if n := s.jobs.Prune(JobRetention); n > 0 {
		s.logger.Debug("pruned finished jobs", zap.Int("count", n))
	}
	p := s.providers.For(rc.QueryAPI)
	job := s.jobs.Create(jobType, resourceType, id)
	logger := s.logger.With(zap.String("job", job.ID), zap.String("resource", resourceType), zap.String("id", id))
	logger.Info("staged save started")

	go func() {
		jobCtx := context.WithoutCancel(ctx)
		job.AppendLog(fmt.Sprintf("PATCH staged parameters of %s %s via %s", rt.Singular, id, rc.QueryAPI))
		result, err := p.Save(jobCtx, resourceType, id, patch)
		s.cache.invalidate(
			cacheKey("record", rc.QueryAPI, resourceType, id),
			cacheKey("plain", rc.QueryAPI, resourceType, id),
		)
		if err != nil {
			job.AppendLog("Error: " + err.Error())
			job.Fail(err.Error())
			metrics.JobsFinished.WithLabelValues(models.JobFailed).Inc()
			logger.Warn("staged save failed", zap.Error(err))
			return
		}
		if mode := view.Lookup(models.Resource(result), "activation.mode"); !mode.Missing() {
			job.AppendLog("Activation mode: " + mode.Text())
		}
		job.AppendLog("Staged parameters saved")
		job.Complete()
		metrics.JobsFinished.WithLabelValues(models.JobCompleted).Inc()
		logger.Info("staged save completed")
	}()
	return job, nil
}
