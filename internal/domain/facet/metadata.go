package facet

// Info is the display metadata of one facet.
type Info struct {
	Key         string `json:"Key"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
}

// Metadata maps facet keys to their display metadata.
type Metadata map[string]Info

// NewMetadata indexes infos by key. Entries without a key are ignored.
func NewMetadata(infos []Info) Metadata {
	m := make(Metadata, len(infos))
	for _, info := range infos {
		if info.Key == "" {
			continue
		}
		m[info.Key] = info
	}
	return m
}

// Label returns the display name for key, falling back to the raw key.
func (m Metadata) Label(key string) string {
	if info, ok := m[key]; ok && info.Name != "" {
		return info.Name
	}
	return key
}

// Description returns the facet description, if any.
func (m Metadata) Description(key string) string {
	return m[key].Description
}
