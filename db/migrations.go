package db

// Migrations is the declared schema history. Append new steps; never edit or
// remove one that has shipped. Version 3 was retired before release.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "init_repository_table",
		SQL:         `CREATE TABLE repository ("id" TEXT PRIMARY KEY, "github_id" TEXT);`,
	},
	{
		Version:     2,
		Description: "init_manifest_table",
		SQL: `CREATE TABLE manifest ("id" TEXT PRIMARY KEY, "repository_id" TEXT, "display_name" TEXT, "filename" TEXT, "enabled" BOOL,
			CONSTRAINT fk_manifest_repo FOREIGN KEY(repository_id) REFERENCES repository(id));`,
	},
	{
		Version:     4,
		Description: "init_settings_table",
		SQL: `CREATE TABLE settings ("default_game_path" TEXT DEFAULT '', "third_party_repo_updates" BOOL DEFAULT 0 NOT NULL,
			"xxmi_path" TEXT DEFAULT '', "fps_unlock_path" TEXT DEFAULT '', "jadeite_path" TEXT DEFAULT '',
			"id" INTEGER NOT NULL CONSTRAINT settings_pk PRIMARY KEY CHECK ("id" = 1));`,
	},
	{
		Version:     5,
		Description: "populate_settings_table",
		SQL: `INSERT INTO settings (default_game_path, third_party_repo_updates, xxmi_path, fps_unlock_path, jadeite_path, id)
			VALUES ('', 0, '', '', '', 1);`,
	},
	{
		Version:     6,
		Description: "init_install_table",
		SQL: `CREATE TABLE install ("id" TEXT PRIMARY KEY, "manifest_id" TEXT, "version" TEXT, "name" TEXT, "directory" TEXT,
			"runner_path" TEXT, "dxvk_path" TEXT, "runner_version" TEXT, "dxvk_version" TEXT, "game_icon" TEXT,
			"game_background" TEXT, "ignore_updates" BOOL, "skip_hash_check" BOOL, "use_jadeite" BOOL, "use_xxmi" BOOL,
			"use_fps_unlock" BOOL, "env_vars" TEXT, "pre_launch_command" TEXT, "launch_command" TEXT, "fps_value" TEXT,
			CONSTRAINT fk_install_manifest FOREIGN KEY(manifest_id) REFERENCES manifest(id));`,
	},
	{
		Version:     7,
		Description: "add_install_runner_prefix",
		SQL:         `ALTER TABLE install ADD COLUMN "runner_prefix" TEXT DEFAULT '';`,
	},
	{
		Version:     8,
		Description: "add_install_launch_args",
		SQL:         `ALTER TABLE install ADD COLUMN "launch_args" TEXT DEFAULT '';`,
	},
}
