package manifest

// GameManifest is the content of a game manifest file as published by a
// manifest repository.
type GameManifest struct {
	Version      int           `json:"version"`
	DisplayName  string        `json:"display_name"`
	Biz          string        `json:"biz"`
	GameVersions []GameVersion `json:"game_versions"`
}

type GameVersion struct {
	Metadata Metadata `json:"metadata"`
	Assets   Assets   `json:"assets"`
}

type Metadata struct {
	Version       string `json:"version"`
	VersionedName string `json:"versioned_name"`
}

type Assets struct {
	GameIcon       string `json:"game_icon"`
	GameBackground string `json:"game_background"`
}

// FindVersion returns the game version whose metadata version is v.
func (m *GameManifest) FindVersion(v string) (*GameVersion, bool) {
	for i := range m.GameVersions {
		if m.GameVersions[i].Metadata.Version == v {
			return &m.GameVersions[i], true
		}
	}
	return nil, false
}
