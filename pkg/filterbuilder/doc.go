/*
Package filterbuilder is a filter-expression engine for building nested
AND/OR filters against a declared schema.

The engine lives in subpackages:

  - schema: field and operator declarations, loaded from YAML or JSON
  - tree: the filter tree and the reducer that applies edit actions
  - codec: the JSON wire form and tree serialization
  - validate: schema validation and the "ready to submit" check
  - query: query string and request body encodings
  - observability: slog helpers, OpenTelemetry metrics and tracing

This package ties them into a Builder, one editing session over one tree.
Every applied action is serialized and handed to the host:

	cfg, err := schema.FromFile("users.yaml")
	if err != nil {
	    return err
	}

	b, err := filterbuilder.New(cfg,
	    filterbuilder.WithLogger(logger),
	    filterbuilder.WithTransport(filterbuilder.Transport{
	        Mode: filterbuilder.ModeGet,
	        OnFilterChange: func(f codec.Filter, qs string) {
	            refresh(qs)
	        },
	    }),
	)
	if err != nil {
	    return err
	}

	root := b.State().(tree.Group)
	cond := tree.NewCondition()
	b.Dispatch(ctx, tree.AddCondition{GroupID: root.ID, Condition: cond})
	b.Dispatch(ctx, tree.UpdateCondition{ID: cond.ID, Updates: tree.Updates{
	    "field": "age", "operator": "gt", "value": 18,
	}})

Actions that cannot apply return diagnostics and change nothing. A
panicking host callback is recovered and reported as a *CallbackError.
*/
package filterbuilder
