// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cappi/internal/config"
	"github.com/tomtom215/cappi/internal/enrich"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/models"
)

var errUsage = errors.New("usage: concierge [serve|recommend|enrich|history|check] [flags]")

func dispatch(ctx context.Context, cfg *config.Config, command string, args []string, stdout io.Writer) error {
	switch command {
	case "serve":
		return serve(ctx, cfg)
	case "recommend":
		userID, req, err := parseRecommendArgs(args)
		if err != nil {
			return err
		}
		return withApp(ctx, cfg, func(a *app) error {
			ctx := invocationContext(ctx, userID)
			result, err := a.engine.Generate(ctx, userID, req)
			if err != nil {
				return err
			}
			return writeJSON(stdout, result)
		})
	case "enrich":
		userID, chat, err := parseEnrichArgs(args)
		if err != nil {
			return err
		}
		return withApp(ctx, cfg, func(a *app) error {
			ctx := invocationContext(ctx, userID)
			enriched, err := a.pipeline.Enrich(ctx, userID, chat)
			if err != nil {
				return err
			}
			return writeJSON(stdout, enriched)
		})
	case "history":
		userID, limit, err := parseHistoryArgs(args)
		if err != nil {
			return err
		}
		return withApp(ctx, cfg, func(a *app) error {
			ctx := invocationContext(ctx, userID)
			records, err := a.engine.Latest(ctx, userID, limit)
			if err != nil {
				return err
			}
			return writeJSON(stdout, records)
		})
	case "check":
		lat, lng, err := parseCheckArgs(args)
		if err != nil {
			return err
		}
		return withApp(ctx, cfg, func(a *app) error {
			level, err := a.directory.CheckPoint(ctx, lat, lng)
			if err != nil {
				return err
			}
			zone, err := a.directory.Locate(ctx, lat, lng)
			if err != nil {
				return err
			}
			check := pointCheck{Lat: lat, Lng: lng, RiskLevel: level, Zone: zone}
			if zone == nil {
				nearest, km, err := a.directory.Nearest(ctx, lat, lng)
				if err != nil {
					return err
				}
				if nearest != nil {
					check.NearestZoneID = nearest.ID
					check.NearestZoneKm = &km
				}
			}
			return writeJSON(stdout, check)
		})
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

type pointCheck struct {
	Lat           float64            `json:"lat"`
	Lng           float64            `json:"lng"`
	RiskLevel     models.RiskLevel   `json:"risk_level"`
	Zone          *models.SafetyZone `json:"zone"`
	NearestZoneID string             `json:"nearest_zone_id,omitempty"`
	NearestZoneKm *float64           `json:"nearest_zone_km,omitempty"`
}

// invocationContext tags a one-shot command with a request ID and the acting user.
func invocationContext(ctx context.Context, userID string) context.Context {
	return logging.EnsureRequestID(logging.ContextWithUserID(ctx, userID))
}

func withApp(ctx context.Context, cfg *config.Config, fn func(*app) error) (err error) {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseRecommendArgs(args []string) (string, models.RequestContext, error) {
	fs := newFlagSet("recommend")
	userID := fs.String("user", "", "traveler user id")
	city := fs.String("city", "", "destination city")
	country := fs.String("country", "", "destination country")
	budget := fs.String("budget", "", "BUDGET, MODERATE, LUXURY or ULTRA_LUXURY")
	risk := fs.String("risk", "", "LOW, MEDIUM or HIGH")
	party := fs.Int("party", 0, "party size")
	prefs := fs.String("prefs", "", "preferences as a JSON object")
	if err := fs.Parse(args); err != nil {
		return "", models.RequestContext{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *userID == "" || *city == "" {
		return "", models.RequestContext{}, fmt.Errorf("%w: recommend requires -user and -city", errUsage)
	}

	req := models.RequestContext{
		City:          *city,
		Country:       *country,
		BudgetLevel:   models.BudgetLevel(strings.ToUpper(*budget)),
		RiskTolerance: models.RiskTolerance(strings.ToUpper(*risk)),
		PartySize:     *party,
	}
	if *prefs != "" {
		if err := json.Unmarshal([]byte(*prefs), &req.Preferences); err != nil {
			return "", models.RequestContext{}, fmt.Errorf("%w: -prefs: %v", errUsage, err)
		}
	}
	return *userID, req, nil
}

func parseEnrichArgs(args []string) (string, enrich.ChatContext, error) {
	fs := newFlagSet("enrich")
	userID := fs.String("user", "", "traveler user id")
	city := fs.String("city", "", "city under discussion")
	country := fs.String("country", "", "country under discussion")
	tripID := fs.String("trip", "", "trip under discussion")
	if err := fs.Parse(args); err != nil {
		return "", enrich.ChatContext{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *userID == "" {
		return "", enrich.ChatContext{}, fmt.Errorf("%w: enrich requires -user", errUsage)
	}
	return *userID, enrich.ChatContext{City: *city, Country: *country, TripID: *tripID}, nil
}

func parseHistoryArgs(args []string) (string, int, error) {
	fs := newFlagSet("history")
	userID := fs.String("user", "", "traveler user id")
	limit := fs.Int("limit", 0, "number of records, 0 for the configured default")
	if err := fs.Parse(args); err != nil {
		return "", 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *userID == "" {
		return "", 0, fmt.Errorf("%w: history requires -user", errUsage)
	}
	return *userID, *limit, nil
}

func parseCheckArgs(args []string) (lat, lng float64, err error) {
	fs := newFlagSet("check")
	latFlag := fs.Float64("lat", 0, "latitude")
	lngFlag := fs.Float64("lng", 0, "longitude")
	if err := fs.Parse(args); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["lat"] || !set["lng"] {
		return 0, 0, fmt.Errorf("%w: check requires -lat and -lng", errUsage)
	}
	return *latFlag, *lngFlag, nil
}
