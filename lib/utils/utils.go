package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^(?i)[a-z0-9._%+\-]+@(?:[a-z0-9\-]+\.)+[a-z]{2,}$`)

// ValidateEmail takes an email string as input and returns a boolean indicating whether the input is a valid email address.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// PrintError prints message inside a banner so it stands out in the shell.
func PrintError(message string) {
	fmt.Print(errorBanner(message))
}

func errorBanner(message string) string {
	message = "ERROR: " + message
	bannerChar := "="
	bannerLength := len(message) + 4
	bannerLine := strings.Repeat(bannerChar, bannerLength)

	var b strings.Builder
	b.WriteString(bannerLine + "\n")
	fmt.Fprintf(&b, "%s %s %s\n", bannerChar, message, bannerChar)
	b.WriteString(bannerLine + "\n\n")
	return b.String()
}
