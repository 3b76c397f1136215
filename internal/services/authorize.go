package services

import (
	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/policy"
)

// authorize evaluates the policy and turns a denial into the matching error:
// anonymous requesters are asked to authenticate, everyone else is forbidden.
func authorize(r policy.Request) error {
	if policy.Allowed(r) {
		return nil
	}
	if !r.Subject.Authenticated {
		return apperrors.ErrUnauthenticated
	}
	return apperrors.ErrForbidden
}

func write(resource policy.Resource, actor *models.User, owner bool) policy.Request {
	return policy.Request{
		Resource: resource,
		Method:   policy.Unsafe,
		Subject:  actor.Subject(),
		Owner:    owner,
	}
}

func read(resource policy.Resource, actor *models.User, owner bool) policy.Request {
	return policy.Request{
		Resource: resource,
		Method:   policy.Safe,
		Subject:  actor.Subject(),
		Owner:    owner,
	}
}

func owns(actor *models.User, authorID string) bool {
	return actor != nil && actor.ID == authorID
}
