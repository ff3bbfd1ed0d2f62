// Package demo is a small user API wired through typed locations. It backs
// cmd/locations-demo and doubles as a worked example of locgen annotations.
package demo

//go:generate go run github.com/toyz/locations/cmd/locgen .

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/toyz/locations/pkg/locations"
)

const (
	RoleUser  locations.Role = "user"
	RoleAdmin locations.Role = "admin"
)

//locations::location /api
type API struct{}

//locations::location /ping -parent=API
type Ping struct {
	//locations::query
	Echo string
}

//locations::location /page -sources=query
type Paging struct {
	Offset int
	Limit  int
}

//locations::location /users -parent=API -name=users.list -lazy
type UserList struct {
	//locations::nested
	Page Paging
	//locations::query q
	Search string
}

//locations::location /users/{id} -parent=API -name=users.show
type UserShow struct {
	ID      uuid.UUID
	Verbose bool
}

//locations::location /users -parent=API -name=users.create -body -lazy
type UserCreate struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

//locations::location /users/{id} -parent=API -name=users.delete
type UserDelete struct {
	//locations::path id
	ID uuid.UUID
}

//locations::location /login -parent=API
type Login struct {
	Email string //locations::post
	//locations::post password
	Password string
	//locations::form remember
	//locations::query remember
	Remember bool
}

// Profile answers for the caller named by the X-User-ID header.
//
//locations::location /me -parent=API
type Profile struct {
	locations.RequestHolder
}

//locations::location /chat/{room} -parent=API
type Chat struct {
	Room string
	//locations::query
	Nick string
}

type pong struct {
	Pong bool   `json:"pong"`
	Echo string `json:"echo,omitempty"`
}

type session struct {
	User     *User `json:"user"`
	Remember bool  `json:"remember"`
}

// Register mounts the demo routes on b.
func Register(b *locations.Builder, store *UserStore) {
	locations.GetJSON(b, PingLocation, func(ctx locations.RequestContext, p *Ping) (pong, error) {
		return pong{Pong: true, Echo: p.Echo}, nil
	})

	locations.GetJSON(b, UserListLocation, func(ctx locations.RequestContext, l *UserList) ([]*User, error) {
		users := store.List(l.Page.Offset, l.Page.Limit)
		if l.Search == "" {
			return users, nil
		}
		matched := users[:0:0]
		for _, user := range users {
			if strings.Contains(strings.ToLower(user.Name), strings.ToLower(l.Search)) {
				matched = append(matched, user)
			}
		}
		return matched, nil
	})

	locations.GetJSON(b, UserShowLocation, func(ctx locations.RequestContext, s *UserShow) (any, error) {
		user, ok := store.Get(s.ID)
		if !ok {
			return nil, locations.NewHTTPError(http.StatusNotFound, "user not found")
		}
		if s.Verbose {
			return user, nil
		}
		return map[string]any{"id": user.ID, "name": user.Name}, nil
	})

	locations.PostJSON(b, UserCreateLocation, func(ctx locations.RequestContext, c *UserCreate) (*locations.Response, error) {
		if c.Name == "" || !strings.Contains(c.Email, "@") {
			return nil, locations.NewHTTPErrorWithDetails(http.StatusUnprocessableEntity, "invalid user", map[string]string{
				"name":  "required",
				"email": "must be an address",
			})
		}
		if _, taken := store.FindByEmail(c.Email); taken {
			return nil, locations.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return locations.Created(store.Create(c.Name, c.Email, c.Roles...)), nil
	})

	locations.DeleteJSON(b, UserDeleteLocation, func(ctx locations.RequestContext, d *UserDelete) (*locations.Response, error) {
		if !store.Delete(d.ID) {
			return nil, locations.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return locations.NoContent(), nil
	}, RoleAdmin)

	locations.PostJSON(b, LoginLocation, func(ctx locations.RequestContext, l *Login) (*session, error) {
		user, ok := store.FindByEmail(l.Email)
		if !ok || l.Password == "" {
			return nil, locations.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return &session{User: user, Remember: l.Remember}, nil
	})

	locations.GetJSON(b, ProfileLocation, func(ctx locations.RequestContext, p *Profile) (*User, error) {
		id, err := uuid.Parse(p.Request().Header("X-User-ID"))
		if err != nil {
			return nil, locations.NewHTTPError(http.StatusUnauthorized, "missing or malformed X-User-ID")
		}
		user, ok := store.Get(id)
		if !ok {
			return nil, locations.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return user, nil
	}, RoleUser, RoleAdmin)

	locations.Socket(b, ChatLocation, func(cfg *locations.SocketConfig[Chat]) {
		cfg.OnConnect(func(ctx locations.SocketContext, c *Chat) {
			_ = ctx.Send("joined " + c.Room + " as " + nick(c))
		})
		cfg.OnMessage(func(ctx locations.SocketContext, c *Chat, message string) {
			_ = ctx.Send(c.Room + "/" + nick(c) + ": " + message)
		})
		cfg.OnBinaryMessage(func(ctx locations.SocketContext, c *Chat, data []byte) {
			_ = ctx.SendBinary(data)
		})
		cfg.OnClose(func(ctx locations.SocketContext, c *Chat, code int, reason string) {
			b.Logger().Info("chat session closed", "room", c.Room, "nick", nick(c), "code", code, "reason", reason)
		})
		cfg.OnError(func(ctx locations.SocketContext, c *Chat, err error) {
			b.Logger().Warn("chat session error", "room", c.Room, "error", err)
		})
	})
}

func nick(c *Chat) string {
	if c.Nick == "" {
		return "anonymous"
	}
	return c.Nick
}

// RolesFromHeaders resolves the caller's roles from X-Role, a comma separated
// list, for use with adapters.RequireRoles.
func RolesFromHeaders(ctx locations.RequestContext) []locations.Role {
	var roles []locations.Role
	for _, role := range strings.Split(ctx.Header("X-Role"), ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, locations.Role(role))
		}
	}
	return roles
}
