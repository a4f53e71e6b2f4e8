package endpoints

import (
	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/relay"
)

// RelayPaths are the paths the relay answers on.
var RelayPaths = []string{"/api/agnihotra", "/"}

// RelayModule mounts the form relay on every RelayPaths entry. Method
// filtering is left to the forwarder.
func RelayModule(f *relay.Forwarder) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		for _, path := range RelayPaths {
			c.Any(path, f.Handle)
		}
	})
}
