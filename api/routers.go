package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const (
	routersPath     = "routeurs/"
	routerTypesPath = "router-types/"
)

type RouterType struct {
	ID   int    `json:"id"`
	Name string `json:"nom_type"`
}

// Router is a solar router as the backend returns it. SecurityCode is write-only on the
// backend and is only ever sent on creation.
type Router struct {
	ID            int    `json:"id,omitempty"`
	Name          string `json:"nom"`
	TypeID        int    `json:"type"`
	Identifier    string `json:"identifiant"`
	SecurityCode  string `json:"code_securite,omitempty"`
	UserID        int    `json:"user,omitempty"`
	OwnerUsername string `json:"user_username,omitempty"`
	TypeName      string `json:"type_nom,omitempty"`
}

type routerCreate struct {
	Name         string `json:"nom"`
	TypeID       int    `json:"type"`
	Identifier   string `json:"identifiant"`
	SecurityCode string `json:"code_securite"`
}

type routerUpdate struct {
	Name       string `json:"nom"`
	TypeID     int    `json:"type"`
	Identifier string `json:"identifiant"`
}

func validateRouter(r Router, creating bool) error {
	errs := fieldErrors{}
	if r.Name == "" {
		errs.add("nom", "This field is required.")
	}
	if r.TypeID <= 0 {
		errs.add("type", "This field is required.")
	}
	if _, err := uuid.Parse(r.Identifier); err != nil {
		errs.add("identifiant", "Must be a valid UUID.")
	}
	if creating && r.SecurityCode == "" {
		errs.add("code_securite", "This field is required.")
	}
	return errs.err()
}

func routerPath(id int) string {
	return fmt.Sprintf("%s%d/", routersPath, id)
}

func (c *Client) ListRouters(ctx context.Context) ([]Router, error) {
	var routers []Router
	if err := c.do(ctx, http.MethodGet, routersPath, nil, nil, &routers); err != nil {
		return nil, err
	}
	return routers, nil
}

func (c *Client) GetRouter(ctx context.Context, id int) (Router, error) {
	var r Router
	err := c.do(ctx, http.MethodGet, routerPath(id), nil, nil, &r)
	return r, err
}

// CreateRouter registers a router. Owner and display fields are assigned by the backend.
func (c *Client) CreateRouter(ctx context.Context, r Router) (Router, error) {
	if err := validateRouter(r, true); err != nil {
		return Router{}, err
	}
	var created Router
	err := c.do(ctx, http.MethodPost, routersPath, nil, routerCreate{
		Name:         r.Name,
		TypeID:       r.TypeID,
		Identifier:   r.Identifier,
		SecurityCode: r.SecurityCode,
	}, &created)
	return created, err
}

// UpdateRouter changes a router's editable fields. The security code cannot be changed.
func (c *Client) UpdateRouter(ctx context.Context, id int, r Router) (Router, error) {
	if err := validateRouter(r, false); err != nil {
		return Router{}, err
	}
	var updated Router
	err := c.do(ctx, http.MethodPut, routerPath(id), nil, routerUpdate{
		Name:       r.Name,
		TypeID:     r.TypeID,
		Identifier: r.Identifier,
	}, &updated)
	return updated, err
}

func (c *Client) DeleteRouter(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, routerPath(id), nil, nil, nil)
}

func (c *Client) RouterTypes(ctx context.Context) ([]RouterType, error) {
	var types []RouterType
	if err := c.do(ctx, http.MethodGet, routerTypesPath, nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// TestConnection asks the backend to reach the physical router and returns its message.
func (c *Client) TestConnection(ctx context.Context, id int) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, routerPath(id)+"test_connection/", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
