// cmd/hashgen generates the attendee source: it reads one display name
// per line on stdin and prints name<TAB>hash lines suitable for the
// directory loader. Hashes are opaque random tokens.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
)

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", name, uuid.New().String())
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read names: %v", err)
	}
}
