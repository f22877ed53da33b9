package usecase

import (
	"rentora/internal/domain/entity"
	"rentora/pkg/errors"
)

// ParticipantID is the identity a user chats under. Company-side users
// (owner and staff) share their company's id so the whole team sees one
// conversation; everyone else chats under their own username.
type ParticipantID struct {
	ID        string
	IsCompany bool
}

// ResolveParticipantID is the single source of truth for mapping a user
// to a chat participant. Every chat read and write goes through it.
func ResolveParticipantID(user *entity.User) (ParticipantID, error) {
	if user.IsCompanySide() {
		if user.CompanyID == "" {
			return ParticipantID{}, errors.InvalidState("company-side user has no company assigned")
		}
		return ParticipantID{ID: user.CompanyID, IsCompany: true}, nil
	}
	return ParticipantID{ID: user.Username}, nil
}
