// ABOUTME: CSV rendering for contact exports
// ABOUTME: Quotes every column except the bare record id
package services

import (
	"strconv"
	"strings"

	"github.com/harperreed/dealdesk/models"
)

// ContactsCSVHeader is the first line of every contact export.
const ContactsCSVHeader = "ID,First Name,Last Name,Email,Phone,Title,Company,Created At,Updated At"

// ContactsCSV renders contacts one per line under ContactsCSVHeader.
func ContactsCSV(contacts []models.Contact) string {
	var b strings.Builder
	b.WriteString(ContactsCSVHeader)
	for _, c := range contacts {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(c.ID))
		for _, v := range []string{
			c.FirstName,
			c.LastName,
			c.Email,
			c.Phone,
			c.Title,
			c.CompanyName(),
			c.CreatedAt,
			c.UpdatedAt,
		} {
			b.WriteByte(',')
			b.WriteString(quote(v))
		}
	}
	return b.String()
}

// quote wraps v in double quotes, doubling any embedded quote.
func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
