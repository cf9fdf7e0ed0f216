// Package rest provides a client-side query builder for PostgREST compatible APIs.
//
// A Client holds the base URL, the schema and default headers. Each call to
// Client.From or Client.Rpc returns a fresh Builder bound to one resource.
// Builder methods mutate and return the same builder so calls can be chained.
// Build finalizes the builder into a Request; Execute hands that request to a
// Doer such as *http.Client.
//
// Tables and views are addressed at /table_name, stored procedures at
// /rpc/function_name. The schema is selected with the Accept-Profile (GET, HEAD)
// or Content-Profile (POST, PATCH, DELETE) header, never with a path prefix.
//
// Query parameters produced by the builder:
//
//	Parameter         | Builder call
//	------------------|------------------------------------------------
//	?select=col1,col2 | Select("col1", "col2")
//	?order=col.desc   | Order("col", Desc, "")
//	?limit=100        | Limit(100)
//	?offset=0         | Offset(0)
//	?col=eq.val       | Eq("col", "val")
//	?col=gt.val       | Gt("col", "val")
//	?col=like.val     | Like("col", "val")
//	?col=in.(a,b,c)   | In("col", []string{"a", "b", "c"})
//	?col=is.null      | Is("col", IsNull)
//	?col=fts(en).val  | Fts("col", "val", "en")
//	?col=sl.(1,10)    | Sl("col", IntRange(1, 10))
//	?on_conflict=col  | OnConflict("col")
//
// Headers set for mutations:
//
//	Header                                              | Builder call
//	----------------------------------------------------|-----------------
//	Prefer: return=representation                       | Insert, Update, Delete
//	Prefer: return=representation,resolution=merge-duplicates | Upsert
//	Prefer: count=exact                                 | Count(CountExact)
//
// Operand values are not escaped. Callers are responsible for valid PostgREST
// literal syntax, the only exception being quoting of in-list elements that
// contain a comma or a parenthesis.
//
// Boolean combinations (and, or, not) and embedded-resource filters are not
// supported.
//
// Example usage:
//
//	client := rest.NewClient("http://localhost:3000", rest.WithSchema("personal"))
//	resp, err := client.From("users").
//		Select("username").
//		Eq("status", "OFFLINE").
//		Execute(ctx, http.DefaultClient)
//
// API is compatible with PostgREST. For more details, see:
// https://docs.postgrest.org/en/stable/references/api/tables_views.html
package rest
