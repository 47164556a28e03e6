package service

import "reviewprivacy/internal/privacy/registry"

// Register adds the service to the host's exporter and eraser registries under
// FriendlyName.
func (s *Service) Register(reg *registry.Registry) error {
	if err := reg.RegisterExporter(FriendlyName, s.Export); err != nil {
		return err
	}
	return reg.RegisterEraser(FriendlyName, s.Erase)
}
