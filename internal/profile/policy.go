package profile

// Policy bundles everything that differs between providers. A Service is
// generic over its Policy.
type Policy struct {
	// Name is the provider key used in file names and the registry.
	Name string

	// Fetcher retrieves the profile remotely. Nil means the provider can
	// only be read from disk.
	Fetcher Fetcher

	// Fields decides which keys survive cleaning.
	Fields FieldPolicy

	// NormalizeSlug post-processes Slug(identifier), e.g. to strip a URL prefix.
	NormalizeSlug func(string) string

	// CacheFirst makes production acquisitions try the stored file before
	// calling the remote API. forceRemote bypasses it.
	CacheFirst bool

	// SampleFile is loaded in development mode when no stored profile exists.
	SampleFile string
}

// Slug computes the storage key for identifier under this policy.
func (p Policy) Slug(identifier string) string {
	s := Slug(identifier)
	if p.NormalizeSlug != nil {
		s = p.NormalizeSlug(s)
	}
	return s
}
