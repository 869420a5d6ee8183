package api

// SyncRequest is the body of POST /api/sync.
type SyncRequest struct {
	Names []string `json:"names"`
	All   bool     `json:"all"`
}

// CharactersResponse lists the known character names.
type CharactersResponse struct {
	Characters []string `json:"characters"`
}

// UploadResponse is returned after a file is stored through the file API.
type UploadResponse struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}
