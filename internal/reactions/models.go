package reactions

// ToggleResult carries the outcome of a breathe toggle: the post's fresh
// like count and the account's fresh point total, read inside the same
// transaction that applied the change.
type ToggleResult struct {
	Liked   bool  `json:"liked"`
	Likes   int64 `json:"likes"`
	Points  int64 `json:"points"`
	Phantom bool  `json:"-"`
}
