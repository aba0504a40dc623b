package db

import (
	"time"
)

// Repository is a source of game manifests.
type Repository struct {
	ID       string `gorm:"column:id;primaryKey" json:"id"`
	GithubID string `gorm:"column:github_id" json:"github_id"`
}

func (Repository) TableName() string { return "repository" }

// Manifest is a game manifest provided by a repository. Filename is the key
// used to look the manifest content up on disk.
type Manifest struct {
	ID           string `gorm:"column:id;primaryKey" json:"id"`
	RepositoryID string `gorm:"column:repository_id" json:"repository_id"`
	DisplayName  string `gorm:"column:display_name" json:"display_name"`
	Filename     string `gorm:"column:filename" json:"filename"`
	Enabled      bool   `gorm:"column:enabled" json:"enabled"`
}

func (Manifest) TableName() string { return "manifest" }

// Install is one configured, launchable copy of a game plus its
// compatibility settings.
type Install struct {
	ID               string `gorm:"column:id;primaryKey" json:"id"`
	ManifestID       string `gorm:"column:manifest_id" json:"manifest_id"`
	Version          string `gorm:"column:version" json:"version"`
	Name             string `gorm:"column:name" json:"name"`
	Directory        string `gorm:"column:directory" json:"directory"`
	RunnerPath       string `gorm:"column:runner_path" json:"runner_path"`
	DxvkPath         string `gorm:"column:dxvk_path" json:"dxvk_path"`
	RunnerVersion    string `gorm:"column:runner_version" json:"runner_version"`
	DxvkVersion      string `gorm:"column:dxvk_version" json:"dxvk_version"`
	GameIcon         string `gorm:"column:game_icon" json:"game_icon"`
	GameBackground   string `gorm:"column:game_background" json:"game_background"`
	IgnoreUpdates    bool   `gorm:"column:ignore_updates" json:"ignore_updates"`
	SkipHashCheck    bool   `gorm:"column:skip_hash_check" json:"skip_hash_check"`
	UseJadeite       bool   `gorm:"column:use_jadeite" json:"use_jadeite"`
	UseXXMI          bool   `gorm:"column:use_xxmi" json:"use_xxmi"`
	UseFPSUnlock     bool   `gorm:"column:use_fps_unlock" json:"use_fps_unlock"`
	EnvVars          string `gorm:"column:env_vars" json:"env_vars"`
	PreLaunchCommand string `gorm:"column:pre_launch_command" json:"pre_launch_command"`
	LaunchCommand    string `gorm:"column:launch_command" json:"launch_command"`
	FPSValue         string `gorm:"column:fps_value" json:"fps_value"`
	RunnerPrefix     string `gorm:"column:runner_prefix" json:"runner_prefix"`
	LaunchArgs       string `gorm:"column:launch_args" json:"launch_args"`
}

func (Install) TableName() string { return "install" }

// SettingsID is the primary key of the only settings row.
const SettingsID = 1

// Settings holds the global launcher defaults.
type Settings struct {
	ID                    int    `gorm:"column:id;primaryKey" json:"-"`
	DefaultGamePath       string `gorm:"column:default_game_path" json:"default_game_path"`
	ThirdPartyRepoUpdates bool   `gorm:"column:third_party_repo_updates" json:"third_party_repo_updates"`
	XXMIPath              string `gorm:"column:xxmi_path" json:"xxmi_path"`
	FPSUnlockPath         string `gorm:"column:fps_unlock_path" json:"fps_unlock_path"`
	JadeitePath           string `gorm:"column:jadeite_path" json:"jadeite_path"`
}

func (Settings) TableName() string { return "settings" }

// SchemaMigration records one applied migration.
type SchemaMigration struct {
	Version     int64     `gorm:"column:version;primaryKey;autoIncrement:false"`
	Description string    `gorm:"column:description;not null"`
	Checksum    string    `gorm:"column:checksum;not null"`
	AppliedAt   time.Time `gorm:"column:applied_at"`
}

func (SchemaMigration) TableName() string { return "schema_migrations" }
