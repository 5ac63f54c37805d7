package services

import (
	"fmt"

	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// Actor is the identity a request is performed as.
type Actor struct {
	UserID   int64
	Username string
	Role     models.Role
}

// Anonymous is the actor for requests without credentials.
var Anonymous = Actor{Role: models.RoleAnonymous}

// IsAnonymous reports whether the actor carries no identity.
func (a Actor) IsAnonymous() bool {
	return a.UserID == 0 || a.Role == models.RoleAnonymous || a.Role == ""
}

// Capability names an action that roles may be granted.
type Capability string

const (
	CapAddHarvest       Capability = "add_harvest"
	CapViewOwnHarvests  Capability = "view_own_harvests"
	CapViewParcels      Capability = "view_parcels"
	CapViewStock        Capability = "view_stock"
	CapChangeStock      Capability = "change_stock"
	CapViewAllHarvests  Capability = "view_all_harvests"
	CapViewReports      Capability = "view_reports"
	CapManageWarehouses Capability = "manage_warehouses"
	CapManageParcels    Capability = "manage_parcels"
	CapExportHarvests   Capability = "export_harvests"
)

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleProducer: {
		CapAddHarvest:      true,
		CapViewOwnHarvests: true,
		CapViewParcels:     true,
	},
	models.RoleManager: {
		CapViewStock:        true,
		CapChangeStock:      true,
		CapViewAllHarvests:  true,
		CapViewReports:      true,
		CapManageWarehouses: true,
		CapManageParcels:    true,
		CapExportHarvests:   true,
	},
}

// Can reports whether role is granted capability. Admins hold every capability.
func Can(role models.Role, capability Capability) bool {
	if role == models.RoleAdmin {
		return true
	}
	return roleCapabilities[role][capability]
}

// Authorize returns nil when actor may perform capability, ErrUnauthenticated
// for an anonymous actor and ErrForbidden otherwise.
func Authorize(actor Actor, capability Capability) error {
	if actor.IsAnonymous() {
		return fmt.Errorf("%w: %s", ErrUnauthenticated, capability)
	}
	if !Can(actor.Role, capability) {
		return fmt.Errorf("%w: role %q lacks %s", ErrForbidden, actor.Role, capability)
	}
	return nil
}

// Home locations returned by HomeFor.
const (
	HomePublic   = "/api/v1/home"
	HomeProducer = "/api/v1/producer/dashboard"
	HomeManager  = "/api/v1/manager/dashboard"
)

// HomeFor maps an actor to its landing resource. Anonymous visitors get the
// public page; producers and managers their dashboards. Admins land on the
// manager dashboard. Any other role is refused.
func HomeFor(actor Actor) (string, error) {
	if actor.IsAnonymous() {
		return HomePublic, nil
	}
	switch actor.Role {
	case models.RoleProducer:
		return HomeProducer, nil
	case models.RoleManager, models.RoleAdmin:
		return HomeManager, nil
	}
	return "", fmt.Errorf("%w: no home for role %q", ErrForbidden, actor.Role)
}
