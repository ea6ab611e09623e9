package render

import (
	"context"
	"fmt"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// PageProvider resolves PageDefs into PageDescriptors for the caller's role.
type PageProvider struct {
	registry *appconfig.Registry
	factory  *Factory
}

// NewPageProvider creates a PageProvider backed by the given registry.
func NewPageProvider(registry *appconfig.Registry, factory *Factory) *PageProvider {
	return &PageProvider{registry: registry, factory: factory}
}

// GetPage resolves a page for the caller. Returns NOT_FOUND for unknown
// pages and FORBIDDEN when the page's role allow-list excludes the caller.
func (p *PageProvider) GetPage(ctx context.Context, rctx *model.RequestContext, pageID string) (model.PageDescriptor, error) {
	pageDef, ok := p.registry.GetPage(pageID)
	if !ok {
		return model.PageDescriptor{}, model.NewNotFoundError(
			fmt.Sprintf("page %q not found", pageID),
		)
	}

	if !permission.CanAccessPage(rctx.Role, pageDef) {
		return model.PageDescriptor{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot access page %q", rctx.Role, pageID),
		)
	}

	desc := model.PageDescriptor{
		ID:         pageDef.ID,
		Title:      pageDef.Title,
		Path:       pageDef.Path,
		LayoutType: pageDef.LayoutType,
	}

	for _, zone := range pageDef.Zones {
		zd := model.ZoneDescriptor{Name: zone.Name}
		for i, c := range zone.Components {
			componentID := appconfig.ComponentID(zone.Name, i)
			cd, err := p.factory.Resolve(ctx, rctx.Role, pageID, componentID, c)
			if err != nil {
				return model.PageDescriptor{}, err
			}
			zd.Components = append(zd.Components, cd)
		}
		desc.Zones = append(desc.Zones, zd)
	}

	return desc, nil
}

// GetComponent resolves a single component, including tab contents fetched
// lazily by their nested id. Page access is re-checked so a component cannot
// be reached around its page's allow-list.
func (p *PageProvider) GetComponent(ctx context.Context, rctx *model.RequestContext, pageID, componentID string) (model.ComponentDescriptor, error) {
	pageDef, ok := p.registry.GetPage(pageID)
	if !ok {
		return model.ComponentDescriptor{}, model.NewNotFoundError(
			fmt.Sprintf("page %q not found", pageID),
		)
	}
	if !permission.CanAccessPage(rctx.Role, pageDef) {
		return model.ComponentDescriptor{}, model.NewForbiddenError(
			fmt.Sprintf("role %q cannot access page %q", rctx.Role, pageID),
		)
	}

	def, ok := p.registry.GetComponent(pageID, componentID)
	if !ok {
		return model.ComponentDescriptor{}, model.NewNotFoundError(
			fmt.Sprintf("component %q not found on page %q", componentID, pageID),
		)
	}

	return p.factory.Resolve(ctx, rctx.Role, pageID, componentID, def)
}

// Navigation returns the sidebar entries visible to the caller's role, in
// sidebar order.
func (p *PageProvider) Navigation(rctx *model.RequestContext) []model.NavigationEntry {
	var entries []model.NavigationEntry
	for _, page := range p.registry.Pages() {
		if !page.ShowInSidebar {
			continue
		}
		if !permission.CanAccessPage(rctx.Role, page) {
			continue
		}
		entries = append(entries, model.NavigationEntry{
			PageID: page.ID,
			Title:  page.Title,
			Path:   page.Path,
			Icon:   page.Icon,
			Order:  page.SidebarOrder,
		})
	}
	if entries == nil {
		entries = []model.NavigationEntry{}
	}
	return entries
}

// App returns the application summary for the shell.
func (p *PageProvider) App() model.AppDescriptor {
	cfg := p.registry.Config()
	roles := cfg.Auth.Roles
	if roles == nil {
		roles = []string{}
	}
	return model.AppDescriptor{
		Name:        cfg.App.Name,
		Version:     cfg.App.Version,
		Description: cfg.App.Description,
		Roles:       roles,
	}
}
