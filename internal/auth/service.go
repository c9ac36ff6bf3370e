package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fleetops/fleet-console/internal/shared"
)

// Service turns proxy headers into a console user.
type Service struct {
	validator *validator.Validate
}

// NewService constructs a new Service.
func NewService() *Service {
	return &Service{validator: validator.New()}
}

// Resolve reads the identity headers. ok is false when the proxy sent none
// at all; a partial or malformed set is an error.
func (s *Service) Resolve(header http.Header) (user shared.User, ok bool, err error) {
	id := Identity{
		Name:  strings.TrimSpace(header.Get(HeaderUser)),
		OrgID: strings.TrimSpace(header.Get(HeaderOrgID)),
		Role:  strings.ToLower(strings.TrimSpace(header.Get(HeaderRole))),
	}
	if id == (Identity{}) {
		return shared.User{}, false, nil
	}
	if err := s.validator.Struct(id); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return shared.User{}, true, fmt.Errorf("%w: %s failed %s", ErrInvalidIdentity, verrs[0].Field(), verrs[0].Tag())
		}
		return shared.User{}, true, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return shared.User{Name: id.Name, OrgID: id.OrgID, Role: id.Role}, true, nil
}
