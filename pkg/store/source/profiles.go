package source

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Profile describes one data source read by report build routines.
type Profile struct {
	Name   string
	Driver string
	DSN    string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, name string) (Profile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// NewRegistry loads profiles from an ini file with one section per source:
//
//	[default]
//	driver = sqlite
//	dsn    = file:reports.db
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources from %s: %w", path, err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]Profile, error) {
	var profiles []Profile
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		p, err := profileFromSection(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (Profile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s not found: %w", name, err)
	}
	return profileFromSection(section)
}

func profileFromSection(section *ini.Section) (Profile, error) {
	p := Profile{
		Name:   section.Name(),
		Driver: section.Key("driver").MustString(DriverSQLite),
		DSN:    section.Key("dsn").String(),
	}
	if p.DSN == "" {
		return Profile{}, fmt.Errorf("profile %s has no dsn", p.Name)
	}
	return p, nil
}
