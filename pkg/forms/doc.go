// Package forms turns person and relationship forms into service requests.
//
// A [PersonForm] is filled from a browser submission ([FromRequest]), from
// CLI flags, or from an existing record for editing ([FromPerson]). Before
// sending, [PersonForm.Validate] checks it with go-playground/validator and
// [PersonForm.Encode] builds the multipart body:
//
//   - full_name and gender are always sent
//   - date_of_birth, date_of_death and notes are sent only when non-blank
//   - profile_photo is attached only when a file was selected
//
// Validation failures are returned as [Errors], keyed by form field name, so
// the web UI can show each message next to its input.
package forms
