package grpc

import (
	"time"

	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names shared by server and client.
const (
	fieldID             = "id"
	fieldUsername       = "username"
	fieldPassword       = "password"
	fieldIsAdmin        = "is_admin"
	fieldToken          = "token"
	fieldExpiresAt      = "expires_at"
	fieldIdentity       = "identity"
	fieldAuthorID       = "author_id"
	fieldAuthorUsername = "author_username"
	fieldContent        = "content"
	fieldCreatedAt      = "created_at"
)

// Timestamps travel as RFC 3339 strings in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func credentialsMessage(username, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldUsername: structpb.NewStringValue(username),
		fieldPassword: structpb.NewStringValue(password),
	}}
}

func loginMessage(session *models.Session, identity *models.Identity) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldToken:     structpb.NewStringValue(session.Token),
		fieldExpiresAt: structpb.NewStringValue(formatTime(session.ExpiresAt)),
		fieldIdentity:  structpb.NewStructValue(identityMessage(identity)),
	}}
}

func identityMessage(id *models.Identity) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:       structpb.NewStringValue(id.ID),
		fieldUsername: structpb.NewStringValue(id.Username),
		fieldIsAdmin:  structpb.NewBoolValue(id.IsAdmin),
	}}
}

func identityFromMessage(s *structpb.Struct) *models.Identity {
	return &models.Identity{
		ID:       stringField(s, fieldID),
		Username: stringField(s, fieldUsername),
		IsAdmin:  s.GetFields()[fieldIsAdmin].GetBoolValue(),
	}
}

func postMessage(p *models.Post) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:             structpb.NewStringValue(p.ID),
		fieldAuthorID:       structpb.NewStringValue(p.AuthorID),
		fieldAuthorUsername: structpb.NewStringValue(p.AuthorUsername),
		fieldContent:        structpb.NewStringValue(p.Content),
		fieldCreatedAt:      structpb.NewStringValue(formatTime(p.CreatedAt)),
	}}
}

func postFromMessage(s *structpb.Struct) *models.Post {
	return &models.Post{
		ID:             stringField(s, fieldID),
		AuthorID:       stringField(s, fieldAuthorID),
		AuthorUsername: stringField(s, fieldAuthorUsername),
		Content:        stringField(s, fieldContent),
		CreatedAt:      parseTime(stringField(s, fieldCreatedAt)),
	}
}

func postListMessage(list []*models.Post) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(list))
	for _, p := range list {
		values = append(values, structpb.NewStructValue(postMessage(p)))
	}
	return &structpb.ListValue{Values: values}
}

func postsFromMessage(l *structpb.ListValue) []*models.Post {
	out := make([]*models.Post, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		out = append(out, postFromMessage(v.GetStructValue()))
	}
	return out
}
