package mjml

import "strings"

// NoShareSuffix turns a network name into plain link without share URL.
const NoShareSuffix = "-noshare"

// Network describes built-in social network icon. Share is URL template with
// [[URL]] placeholder, empty when network has no sharing endpoint.
type Network struct {
	Icon  string
	Color string
	Share string
}

var networks = map[string]Network{
	"facebook":   {Icon: "facebook.png", Color: "#3b5998", Share: "https://www.facebook.com/sharer/sharer.php?u=[[URL]]"},
	"twitter":    {Icon: "twitter.png", Color: "#55acee", Share: "https://twitter.com/intent/tweet?url=[[URL]]"},
	"x":          {Icon: "twitter-x.png", Color: "#000000", Share: "https://twitter.com/intent/tweet?url=[[URL]]"},
	"google":     {Icon: "google-plus.png", Color: "#dc4e41", Share: "https://plus.google.com/share?url=[[URL]]"},
	"pinterest":  {Icon: "pinterest.png", Color: "#bd081c", Share: "https://pinterest.com/pin/create/button/?url=[[URL]]&media=&description="},
	"linkedin":   {Icon: "linkedin.png", Color: "#0077b5", Share: "https://www.linkedin.com/shareArticle?mini=true&url=[[URL]]&title=&summary=&source="},
	"tumblr":     {Icon: "tumblr.png", Color: "#344356", Share: "https://www.tumblr.com/widgets/share/tool?canonicalUrl=[[URL]]"},
	"xing":       {Icon: "xing.png", Color: "#296366", Share: "https://www.xing.com/app/user?op=share&url=[[URL]]"},
	"instagram":  {Icon: "instagram.png", Color: "#3f729b"},
	"web":        {Icon: "web.png", Color: "#4BADE9"},
	"snapchat":   {Icon: "snapchat.png", Color: "#FFFA54"},
	"youtube":    {Icon: "youtube.png", Color: "#EB3323"},
	"github":     {Icon: "github.png", Color: "#000000"},
	"vimeo":      {Icon: "vimeo.png", Color: "#53B4E7"},
	"medium":     {Icon: "medium.png", Color: "#000000"},
	"soundcloud": {Icon: "soundcloud.png", Color: "#EF7F31"},
	"dribbble":   {Icon: "dribbble.png", Color: "#D95988"},
}

// LookupNetwork finds built-in network by name. Names with NoShareSuffix
// resolve to the same network without share URL.
func LookupNetwork(name string) (Network, bool) {
	base, noShare := strings.CutSuffix(name, NoShareSuffix)
	n, ok := networks[base]
	if !ok {
		return Network{}, false
	}
	if noShare {
		n.Share = ""
	}
	return n, true
}

// ShareURL substitutes link into share template. Without template link is
// returned unchanged.
func (n Network) ShareURL(link string) string {
	if n.Share == "" || link == "" {
		return link
	}
	return strings.ReplaceAll(n.Share, "[[URL]]", link)
}
