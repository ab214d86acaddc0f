// Package integrations provides the HTTP plumbing shared by service clients.
//
// # Overview
//
// [Client] wraps an [http.Client] with:
//
//   - default headers applied to every request
//   - optional response caching through a [cache.Cache] (null by default)
//   - optional GET retries with exponential backoff (zero by default)
//   - request, response and error events reported to [observability.HTTP]
//
// The family-tree REST client lives in the [familyapi] subpackage and builds
// on these primitives.
//
// # Errors
//
// Every failure (transport error, non-2xx status, undecodable body) is an
// [*APIError] that matches [ErrRequestFailed]:
//
//	if errors.Is(err, integrations.ErrRequestFailed) {
//	    // show the generic error view
//	}
//
// The status code and a short excerpt of the body are kept on the APIError
// for logging only.
//
// [cache.Cache]: github.com/matzehuels/familytree/pkg/cache.Cache
// [observability.HTTP]: github.com/matzehuels/familytree/pkg/observability.HTTP
// [familyapi]: github.com/matzehuels/familytree/pkg/integrations/familyapi
package integrations
