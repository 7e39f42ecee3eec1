package adapters

import "proxypool/internal/crawl"

// init registers every built-in adapter with the crawl package's default
// registry, an explicit compile-time list in place of directory-glob
// dynamic loading.
func init() {
	crawl.Register(NewTextListAdapter("github-vakhov", []TextListSource{
		{Protocol: "https", URL: "https://vakhov.github.io/fresh-proxy-list/https.txt"},
		{Protocol: "http", URL: "https://vakhov.github.io/fresh-proxy-list/http.txt"},
		{Protocol: "socks5", URL: "https://vakhov.github.io/fresh-proxy-list/socks5.txt"},
		{Protocol: "socks4", URL: "https://vakhov.github.io/fresh-proxy-list/socks4.txt"},
	}))

	crawl.Register(NewTextListAdapter("github-iplocate", []TextListSource{
		{Protocol: "http", URL: "https://raw.githubusercontent.com/iplocate/free-proxy-list/main/protocols/https.txt"},
		{Protocol: "socks5", URL: "https://raw.githubusercontent.com/iplocate/free-proxy-list/main/protocols/socks5.txt"},
		{Protocol: "socks4", URL: "https://raw.githubusercontent.com/iplocate/free-proxy-list/main/protocols/socks4.txt"},
	}))

	crawl.Register(NewHTMLTableAdapter(HTMLTableConfig{
		Name:     "free-proxy-list",
		URLs:     []string{"https://free-proxy-list.net/zh-cn/ssl-proxy.html"},
		IPCol:    0,
		PortCol:  1,
		HTTPSCol: 6,
	}))

	crawl.Register(NewHTMLTableAdapter(HTMLTableConfig{
		Name: "get-free-proxy",
		URLs: []string{
			"https://getfreeproxy.com/lists/socks4-proxy-list",
			"https://getfreeproxy.com/lists/socks5-proxy-list",
			"https://getfreeproxy.com/lists/http-proxy-list",
			"https://getfreeproxy.com/lists/https-proxy-list",
		},
		IPCol:       0,
		PortCol:     1,
		ProtocolCol: 2,
	}))
}
