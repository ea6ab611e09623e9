package appconfig

import (
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// snapshot is an immutable view of one loaded config, indexed for lookups.
type snapshot struct {
	config       model.AppConfig
	pagesByID    map[string]model.PageDef
	pagesByPath  map[string]model.PageDef
	usersByEmail map[string]model.UserDef
	components   map[string]model.ComponentDef // key: pageID + "/" + componentID
	version      string
	checksum     string
}

// Registry is a read-optimized, thread-safe holder of the current app config.
// It uses atomic pointer swap for lock-free concurrent reads; a hot reload
// replaces the snapshot wholesale.
type Registry struct {
	snap    atomic.Pointer[snapshot]
	reloads []func(checksum string)
}

// NewRegistry creates a Registry from an initial config.
func NewRegistry(cfg model.AppConfig, version, checksum string) *Registry {
	r := &Registry{}
	r.Replace(cfg, version, checksum)
	return r
}

// ComponentID names a component by its zone and position, e.g. "main:0".
func ComponentID(zone string, index int) string {
	return zone + ":" + strconv.Itoa(index)
}

// TabComponentID names the nested component of one tab, e.g. "main:0.2".
func TabComponentID(parentID string, tabIndex int) string {
	return parentID + "." + strconv.Itoa(tabIndex)
}

// Replace atomically swaps the registry contents with a snapshot built from
// the given config, then notifies reload hooks.
func (r *Registry) Replace(cfg model.AppConfig, version, checksum string) {
	s := &snapshot{
		config:       cfg,
		pagesByID:    make(map[string]model.PageDef, len(cfg.Pages)),
		pagesByPath:  make(map[string]model.PageDef, len(cfg.Pages)),
		usersByEmail: make(map[string]model.UserDef, len(cfg.Auth.Users)),
		components:   make(map[string]model.ComponentDef),
		version:      version,
		checksum:     checksum,
	}

	for _, p := range cfg.Pages {
		s.pagesByID[p.ID] = p
		s.pagesByPath[p.Path] = p
		for _, z := range p.Zones {
			for i, c := range z.Components {
				id := ComponentID(z.Name, i)
				s.components[p.ID+"/"+id] = c
				// Tab contents get addressable ids of their own so clients
				// can fetch them lazily: "{zone}:{index}.{tab}".
				if c.Type != model.ComponentTabs {
					continue
				}
				props, err := c.DecodeProps()
				if err != nil {
					continue
				}
				if tp, ok := props.(model.TabsProps); ok {
					for ti, tab := range tp.Tabs {
						s.components[p.ID+"/"+TabComponentID(id, ti)] = tab.Component
					}
				}
			}
		}
	}
	for _, u := range cfg.Auth.Users {
		s.usersByEmail[u.Email] = u
	}

	r.snap.Store(s)
	for _, fn := range r.reloads {
		fn(checksum)
	}
}

// AddReloadHook registers a callback invoked after every snapshot swap.
// Hooks must be registered before the registry is shared across goroutines.
func (r *Registry) AddReloadHook(fn func(checksum string)) {
	r.reloads = append(r.reloads, fn)
}

func (r *Registry) current() *snapshot {
	return r.snap.Load()
}

// Config returns the full current config.
func (r *Registry) Config() model.AppConfig {
	return r.current().config
}

// Resources returns the current resource definitions.
func (r *Registry) Resources() map[string]model.ResourceDef {
	return r.current().config.Resources
}

// GetResource returns the resource definition with the given name.
func (r *Registry) GetResource(name string) (model.ResourceDef, bool) {
	def, ok := r.current().config.Resources[name]
	return def, ok
}

// GetPage returns the page with the given ID.
func (r *Registry) GetPage(pageID string) (model.PageDef, bool) {
	p, ok := r.current().pagesByID[pageID]
	return p, ok
}

// GetPageByPath returns the page registered at the given route path.
func (r *Registry) GetPageByPath(path string) (model.PageDef, bool) {
	p, ok := r.current().pagesByPath[path]
	return p, ok
}

// GetUser returns the configured user with the given email.
func (r *Registry) GetUser(email string) (model.UserDef, bool) {
	u, ok := r.current().usersByEmail[email]
	return u, ok
}

// GetComponent returns the component at componentID ("{zone}:{index}") on the
// given page.
func (r *Registry) GetComponent(pageID, componentID string) (model.ComponentDef, bool) {
	c, ok := r.current().components[pageID+"/"+componentID]
	return c, ok
}

// Pages returns all pages ordered by sidebar order, then ID for stability.
func (r *Registry) Pages() []model.PageDef {
	cfg := r.current().config
	pages := make([]model.PageDef, len(cfg.Pages))
	copy(pages, cfg.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].SidebarOrder != pages[j].SidebarOrder {
			return pages[i].SidebarOrder < pages[j].SidebarOrder
		}
		return pages[i].ID < pages[j].ID
	})
	return pages
}

// Version returns the config version currently being served. Empty for
// file-loaded configs.
func (r *Registry) Version() string {
	return r.current().version
}

// Checksum returns the checksum of the currently served config.
func (r *Registry) Checksum() string {
	return r.current().checksum
}
