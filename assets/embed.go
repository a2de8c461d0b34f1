package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed daily.txt dictionary.txt sql/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

// DailyList returns the curated daily words in order.
func DailyList() ([]string, error) {
	return readLines("daily.txt")
}

// DictionaryList returns the accepted guesses.
func DictionaryList() ([]string, error) {
	return readLines("dictionary.txt")
}

// Migrations returns the embedded SQL migrations rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// The directory is embedded at compile time.
		panic(err)
	}
	return sub
}
