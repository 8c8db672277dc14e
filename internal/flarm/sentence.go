/*
	sentence.go: PFLAA/PFLAU sentence assembly (spec §6). Proprietary FLARM
	sentences follow ordinary NMEA-0183 shape: '$' + body + '*' + two hex
	digit XOR checksum of the body + CRLF.
*/

package flarm

import (
	"fmt"
	"strings"
)

// Checksum XORs together every byte of body (the text between '$' and '*').
func Checksum(body string) byte {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return cs
}

// BuildSentence joins fields with commas behind the given talker/proprietary
// prefix (e.g. "PFLAA") and appends the checksum and CRLF terminator.
func BuildSentence(prefix string, fields []string) string {
	body := prefix
	if len(fields) > 0 {
		body += "," + strings.Join(fields, ",")
	}
	return fmt.Sprintf("$%s*%02X\r\n", body, Checksum(body))
}
