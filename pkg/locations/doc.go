// Package locations binds typed request structs ("locations") to routes of an
// existing HTTP router.
//
// A location is declared once with Define and an explicit field table. Each
// request hydrates a fresh instance from path, query and form parameters or
// the JSON body, and the registered handler receives the typed value:
//
//	type Article struct {
//		ID    int
//		Draft bool
//	}
//
//	var article = locations.Define[Article]("/articles/{id}").Fields(
//		locations.Field("id", func(a *Article) *int { return &a.ID }, locations.FromPath("")),
//		locations.Field("draft", func(a *Article) *bool { return &a.Draft }),
//	)
//
//	locations.Locations(router, func(b *locations.Builder) {
//		b.Path("/api", func(api *locations.Builder) {
//			locations.GetJSON(api, article, func(ctx locations.RequestContext, a *Article) (*Article, error) {
//				return a, nil
//			})
//		})
//	})
//
// Field tables can be written by hand or generated with cmd/locgen from
// //locations:: annotations.
package locations
