// Package familyapi is the client for the family-tree REST service.
//
// # Endpoints
//
//	GET    /persons/?name=&gender=&page=                    ListPersons, AllPersons
//	GET    /persons/{id}/                                   GetPerson, GetPersonDetail
//	GET    /persons/{id}/family_tree/                       GetFamilyTree
//	GET    /persons/{id}/descendants/                       Descendants
//	GET    /persons/{id}/ancestors/                         Ancestors
//	POST   /persons/                      (multipart)       CreatePerson
//	PUT    /persons/{id}/                 (multipart)       UpdatePerson
//	DELETE /persons/{id}/                                   DeletePerson
//	GET    /relationships/?type=&person=                    ListRelationships
//	POST   /relationships/create_spouse_relationship/       CreateSpouseRelationship
//	POST   /relationships/create_parent_child_relationship/ CreateParentChildRelationship
//
// Paths are relative to the base URL, [DefaultBaseURL] unless configured.
//
// # Errors
//
// Every failure matches [integrations.ErrRequestFailed]. Ids are checked to
// be UUIDs before any request is sent; a malformed id fails with an
// INVALID_ID error from pkg/errors instead.
//
// # Caching
//
// Single-person reads and family trees go through the shared client cache
// (the null cache unless configured). Successful writes drop the cached
// entries of every person they touch.
package familyapi
