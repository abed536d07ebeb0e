// Package admin holds the registry of administrative resources. The
// registry is built once at startup and passed by reference to route
// registration; there is no package-level state.
package admin

import "github.com/gin-gonic/gin"

// Resource is one administrable entity and the routes that manage it.
type Resource struct {
	Name     string
	Register func(group *gin.RouterGroup)
}

type Registry struct {
	resources []Resource
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a resource. Registration order is preserved and duplicate
// names replace the earlier entry.
func (r *Registry) Add(name string, register func(group *gin.RouterGroup)) {
	for i := range r.resources {
		if r.resources[i].Name == name {
			r.resources[i].Register = register
			return
		}
	}
	r.resources = append(r.resources, Resource{Name: name, Register: register})
}

// Mount attaches every registered resource under its own sub-group.
func (r *Registry) Mount(group *gin.RouterGroup) {
	for _, resource := range r.resources {
		resource.Register(group.Group("/" + resource.Name))
	}
}

// Names lists registered resource names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.resources))
	for _, resource := range r.resources {
		names = append(names, resource.Name)
	}
	return names
}
