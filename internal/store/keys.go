package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadKeyList reads a newline separated list of composite keys. Blank lines
// and lines starting with '#' are skipped.
func ReadKeyList(r io.Reader) ([]string, error) {
	var keys []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading key list: %w", err)
	}
	return keys, nil
}

// LoadKeyList reads the key list file at path.
func LoadKeyList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key list: %w", err)
	}
	defer file.Close()

	return ReadKeyList(file)
}
