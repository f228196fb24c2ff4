package main

import (
	"io"
	"strings"
)

// printUsage writes a usage guide to w.
func printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("postgen — generate and publish an Instagram post from a theme\n\n")
	b.WriteString("Usage:\n")
	b.WriteString("  postgen [run] [flags] [theme words...]\n")
	b.WriteString("  postgen export [-o file]\n\n")
	b.WriteString("Flags must come before the theme words.\n")
	b.WriteString("With no theme words the theme is read from stdin. A theme that is an\n")
	b.WriteString("http(s) URL is replaced by the title of the page it points to.\n\n")
	b.WriteString("Run flags (precedence: flag > env > default):\n")
	b.WriteString("  -output-dir string\n    Directory for images and posts.json (env POSTGEN_OUTPUT_DIR or default outputs)\n")
	b.WriteString("  -proof\n    Also write a PDF proof sheet next to the image\n")
	b.WriteString("  -hook string\n    JavaScript file with transformCaption/transformHashtags (env POSTGEN_HOOK)\n")
	b.WriteString("  -no-publish\n    Skip Instagram publishing even when credentials are set\n")
	b.WriteString("  -http-timeout duration\n    HTTP timeout for API calls (env OAI_HTTP_TIMEOUT; default none)\n")
	b.WriteString("  -log-level string\n    debug, info, warn or error (env POSTGEN_LOG_LEVEL or default info)\n")
	b.WriteString("  -print-config\n    Print resolved config with secrets masked and exit\n")
	b.WriteString("\nExport flags:\n")
	b.WriteString("  -o string\n    Spreadsheet path (default <output-dir>/posts.xlsx)\n")
	b.WriteString("  -output-dir string\n    Directory holding posts.json (env POSTGEN_OUTPUT_DIR or default outputs)\n")
	b.WriteString("\n  --version | -version\n    Print version and exit\n")
	b.WriteString("\nEnvironment:\n")
	b.WriteString("  OAI_API_KEY (or OPENAI_API_KEY) is required. INSTAGRAM_ACCESS_TOKEN and\n")
	b.WriteString("  FACEBOOK_PAGE_ID enable publishing; GITHUB_TOKEN/GITHUB_USERNAME and\n")
	b.WriteString("  MINIO_ENDPOINT/MINIO_BUCKET enable image hosts. Values are also read from .env.\n")
	b.WriteString("\nExamples:\n")
	b.WriteString("  # Generate without publishing\n")
	b.WriteString("  postgen -no-publish sunset travel\n\n")
	b.WriteString("  # Theme from an article, with a proof sheet\n")
	b.WriteString("  postgen -proof https://example.com/blog/slow-mornings\n\n")
	b.WriteString("  # Export the post log\n")
	b.WriteString("  postgen export -o posts.xlsx\n")
	safeFprintln(w, strings.TrimRight(b.String(), "\n"))
}
