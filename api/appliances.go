package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
)

const (
	appliancesPath     = "appareils/"
	configurationsPath = "configurations/"
)

// Appliance is a load driven by a router.
type Appliance struct {
	ID            int            `json:"id,omitempty"`
	Name          string         `json:"nom"`
	Type          string         `json:"type"`
	MaxPower      float64        `json:"puissance_max"`
	RouterID      int            `json:"routeur"`
	Configuration *Configuration `json:"configuration,omitempty"`
}

// Configuration tells a router when to divert surplus to an appliance. Window bounds are
// "HH:MM" or "HH:MM:SS".
type Configuration struct {
	ID                  int     `json:"id,omitempty"`
	ApplianceID         int     `json:"appareil"`
	ActivationThreshold float64 `json:"seuil_activation"`
	WindowStart         string  `json:"plage_horaire_debut"`
	WindowEnd           string  `json:"plage_horaire_fin"`
}

func (c *Client) ListAppliances(ctx context.Context, routerID int) ([]Appliance, error) {
	var appliances []Appliance
	query := url.Values{"routeur": {strconv.Itoa(routerID)}}
	if err := c.do(ctx, http.MethodGet, appliancesPath, query, nil, &appliances); err != nil {
		return nil, err
	}
	return appliances, nil
}

func (c *Client) CreateAppliance(ctx context.Context, a Appliance) (Appliance, error) {
	a.ID, a.Configuration = 0, nil
	var created Appliance
	err := c.do(ctx, http.MethodPost, appliancesPath, nil, a, &created)
	return created, err
}

func (c *Client) UpdateAppliance(ctx context.Context, id int, a Appliance) (Appliance, error) {
	a.ID, a.Configuration = 0, nil
	var updated Appliance
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s%d/", appliancesPath, id), nil, a, &updated)
	return updated, err
}

// DeleteAppliance removes an appliance; the backend drops its configuration with it.
func (c *Client) DeleteAppliance(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", appliancesPath, id), nil, nil, nil)
}

func (c *Client) CreateConfiguration(ctx context.Context, cfg Configuration) (Configuration, error) {
	cfg.ID = 0
	var created Configuration
	err := c.do(ctx, http.MethodPost, configurationsPath, nil, cfg, &created)
	return created, err
}

func (c *Client) UpdateConfiguration(ctx context.Context, id int, cfg Configuration) (Configuration, error) {
	cfg.ID = 0
	var updated Configuration
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s%d/", configurationsPath, id), nil, cfg, &updated)
	return updated, err
}

// SaveAppliance creates or updates a and then its configuration, linking the two. A zero ID
// means create. If the appliance is saved but its configuration is not, the saved appliance is
// returned together with the error.
func (c *Client) SaveAppliance(ctx context.Context, a Appliance, cfg Configuration) (Appliance, error) {
	var (
		saved Appliance
		err   error
	)
	if a.ID == 0 {
		saved, err = c.CreateAppliance(ctx, a)
	} else {
		saved, err = c.UpdateAppliance(ctx, a.ID, a)
	}
	if err != nil {
		return Appliance{}, apperrors.Wrapf(err, "save appliance")
	}

	cfg.ApplianceID = saved.ID
	var savedCfg Configuration
	if cfg.ID == 0 {
		savedCfg, err = c.CreateConfiguration(ctx, cfg)
	} else {
		savedCfg, err = c.UpdateConfiguration(ctx, cfg.ID, cfg)
	}
	if err != nil {
		return saved, apperrors.Wrapf(err, "save configuration of appliance %d", saved.ID)
	}
	saved.Configuration = &savedCfg
	return saved, nil
}
