package types

// CoverAsset references one uploaded cover image on the object store.
// PublicID is the store's stable object key; deleting the asset later
// requires only this value.
type CoverAsset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}
