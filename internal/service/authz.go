package service

import "github.com/templui/folio/internal/model"

const (
	ConfirmDeleteAccount = "DELETE MY ACCOUNT"
	ConfirmDeleteProject = "DELETE MY PROJECT"
)

func requireUser(caller *model.User) error {
	if caller == nil {
		return unauthorized("sign in to continue")
	}
	return nil
}

// requireAdmin gates every content mutation and admin read.
func requireAdmin(caller *model.User) error {
	if caller == nil {
		return unauthorized("sign in to continue")
	}
	if !model.IsAdmin(caller) {
		return unauthorized("admin access required")
	}
	return nil
}

func requireOwner(caller *model.User, ownerID string) error {
	if !model.IsOwner(caller, ownerID) {
		return unauthorized("you do not own this resource")
	}
	return nil
}
