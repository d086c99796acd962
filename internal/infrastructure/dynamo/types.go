package dynamo

import (
	"time"

	"github.com/ErlanBelekov/notes-api/internal/domain"
)

// Single-table layout:
//
//	USER#<email>  PROFILE   one item per user, email uniqueness via conditional put
//	NOTE#<id>     NOTE      one item per note
//
// GSI_UserId (UserId) resolves users by id; GSI_OwnerNotes (OwnerId, Created)
// lists a user's notes newest first.
const (
	userSK = "PROFILE"
	noteSK = "NOTE"

	userIDIndex     = "GSI_UserId"
	ownerNotesIndex = "GSI_OwnerNotes"
)

func userPK(email string) string { return "USER#" + email }
func notePK(id string) string    { return "NOTE#" + id }

type dynamoUser struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	UserID       string `dynamodbav:"UserId"`
	Name         string `dynamodbav:"Name"`
	Email        string `dynamodbav:"Email"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	Created      int64  `dynamodbav:"Created"`
	Updated      int64  `dynamodbav:"Updated"`
}

func userToDynamo(u *domain.User) dynamoUser {
	return dynamoUser{
		PK:           userPK(u.Email),
		SK:           userSK,
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Created:      u.CreatedAt.UnixNano(),
		Updated:      u.UpdatedAt.UnixNano(),
	}
}

func userFromDynamo(du dynamoUser) *domain.User {
	return &domain.User{
		ID:           du.UserID,
		Name:         du.Name,
		Email:        du.Email,
		PasswordHash: du.PasswordHash,
		CreatedAt:    time.Unix(0, du.Created).UTC(),
		UpdatedAt:    time.Unix(0, du.Updated).UTC(),
	}
}

type dynamoNote struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	NoteID   string `dynamodbav:"NoteId"`
	OwnerID  string `dynamodbav:"OwnerId"`
	Title    string `dynamodbav:"Title"`
	Content  string `dynamodbav:"Content"`
	Category string `dynamodbav:"Category"`
	Created  int64  `dynamodbav:"Created"`
	Updated  int64  `dynamodbav:"Updated"`
}

func noteToDynamo(n *domain.Note) dynamoNote {
	return dynamoNote{
		PK:       notePK(n.ID),
		SK:       noteSK,
		NoteID:   n.ID,
		OwnerID:  n.OwnerID,
		Title:    n.Title,
		Content:  n.Content,
		Category: string(n.Category),
		Created:  n.CreatedAt.UnixNano(),
		Updated:  n.UpdatedAt.UnixNano(),
	}
}

func noteFromDynamo(dn dynamoNote) *domain.Note {
	return &domain.Note{
		ID:        dn.NoteID,
		OwnerID:   dn.OwnerID,
		Title:     dn.Title,
		Content:   dn.Content,
		Category:  domain.Category(dn.Category),
		CreatedAt: time.Unix(0, dn.Created).UTC(),
		UpdatedAt: time.Unix(0, dn.Updated).UTC(),
	}
}
