package render

// DefaultSocialIconOrigin is base URL of built-in social network icons.
const DefaultSocialIconOrigin = "https://www.mailjet.com/images/theme/v1/icons/ico-social/"

// Options are static settings of a render call.
type Options struct {
	// KeepComments passes comments from the source through to the output.
	KeepComments bool
	// SocialIconOrigin replaces base URL of built-in social icons.
	SocialIconOrigin string
	// Fonts maps font name to stylesheet URL, merged over built-in Google
	// fonts. Fonts from this map are linked only when some rendered
	// font-family mentions them.
	Fonts map[string]string
	// MinifyStyles compacts user style blocks.
	MinifyStyles bool
}

// DefaultOptions returns options used when caller has no preferences.
func DefaultOptions() Options {
	return Options{
		KeepComments:     true,
		SocialIconOrigin: DefaultSocialIconOrigin,
	}
}

func (o Options) iconOrigin() string {
	if o.SocialIconOrigin == "" {
		return DefaultSocialIconOrigin
	}
	return o.SocialIconOrigin
}
