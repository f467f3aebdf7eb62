package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/executor"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/term"

	"github.com/hmans/coursegraph/internal/auth"
	"github.com/hmans/coursegraph/internal/graph"
	"github.com/hmans/coursegraph/internal/ui"
)

var (
	queryJSON       bool
	queryVariables  string
	queryOperation  string
	querySchemaOnly bool
	queryDescribe   string
	queryAs         string
)

var graphqlCmd = &cobra.Command{
	Use:     "graphql <query>",
	Aliases: []string{"query"},
	Short:   "Execute a GraphQL query or mutation",
	Long: `Execute a GraphQL query or mutation against the configured store.

The argument should be a valid GraphQL query or mutation string.

Examples:
  # List all users
  coursegraph graphql '{ users { _id name email } }'

  # Get a user and the courses they teach
  coursegraph graphql '{ user(id: "abc") { name courses { title } } }'

  # Create a user
  coursegraph graphql 'mutation { newUser(name: "Ada", email: "ada@example.com") { _id } }'

  # Use variables
  coursegraph graphql -v '{"id": "abc"}' 'query GetUser($id: ID!) { user(id: $id) { name } }'

  # Resolve "me" as a given user
  coursegraph graphql --as abc '{ me { name } }'

  # Read from stdin (useful for complex queries or escaping issues)
  cat query.graphql | coursegraph graphql

  # Print the schema, or describe one operation
  coursegraph graphql --schema
  coursegraph graphql --describe newCourse`,
	Args: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly || queryDescribe != "" {
			return nil
		}
		// Allow 0 args if stdin has data, or exactly 1 arg
		if len(args) > 1 {
			return fmt.Errorf("accepts at most 1 argument (the GraphQL query)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly {
			fmt.Print(GetGraphQLSchema())
			return nil
		}
		if queryDescribe != "" {
			return describeOperation(cmd.OutOrStdout(), queryDescribe)
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		} else {
			stdinQuery, err := readFromStdin()
			if err != nil {
				return err
			}
			if stdinQuery == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}
			query = stdinQuery
		}

		var variables map[string]any
		if queryVariables != "" {
			if err := json.Unmarshal([]byte(queryVariables), &variables); err != nil {
				return fmt.Errorf("invalid variables JSON: %w", err)
			}
		}

		ctx := context.Background()
		if queryAs != "" {
			ctx = auth.WithViewer(ctx, auth.Viewer{UserID: queryAs})
		}

		b, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer b.Close(context.Background())

		result, err := executeQuery(ctx, b.resolver(), query, variables, queryOperation)
		if err != nil {
			return err
		}

		if queryJSON {
			fmt.Println(string(result))
		} else {
			prettyPrint(result, isTerminal(os.Stdout))
		}
		return nil
	},
}

// readFromStdin reads the query from stdin if data is available.
func readFromStdin() (string, error) {
	// A terminal on stdin means nothing was piped in
	if isTerminal(os.Stdin) {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// executeQuery runs a GraphQL document against r through the same executor the HTTP
// handler uses. On success it returns just the data portion of the response.
func executeQuery(ctx context.Context, r *graph.Resolver, query string, variables map[string]any, operationName string) ([]byte, error) {
	es := graph.NewExecutableSchema(graph.Config{Resolvers: r, Log: log})
	exec := executor.New(es)
	exec.Use(extension.Introspection{})

	ctx = graphql.StartOperationTrace(ctx)
	params := &graphql.RawParams{
		Query:         query,
		Variables:     variables,
		OperationName: operationName,
	}

	opCtx, errs := exec.CreateOperationContext(ctx, params)
	if errs != nil {
		return nil, formatGraphQLErrors(errs)
	}

	ctx = graphql.WithOperationContext(ctx, opCtx)
	handler, ctx := exec.DispatchOperation(ctx, opCtx)
	resp := handler(ctx)

	if len(resp.Errors) > 0 {
		return nil, formatGraphQLErrors(resp.Errors)
	}

	return resp.Data, nil
}

// formatGraphQLErrors formats GraphQL errors into a single error.
func formatGraphQLErrors(errs gqlerror.List) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return fmt.Errorf("graphql: %s", errs[0].Message)
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("graphql errors:\n  %s", strings.Join(msgs, "\n  "))
}

// prettyPrint outputs the JSON indented, with colors when writing to a terminal.
func prettyPrint(data []byte, color bool) {
	out := pretty.Pretty(data)
	if color {
		out = pretty.Color(out, nil)
	}
	fmt.Print(string(out))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// describeOperation prints the signature, description and arguments of one root field,
// followed by the fields of the object type it returns.
func describeOperation(w io.Writer, name string) error {
	reg := graph.DefaultRegistry()
	op, err := reg.Describe(name)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, ui.Bold.Render(op.Signature()))
	fmt.Fprintln(w, ui.Muted.Render(op.Root))
	if op.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, op.Description)
	}
	if len(op.Args) > 0 {
		fmt.Fprintln(w)
		for _, a := range op.Args {
			req := ui.Muted.Render("optional")
			if a.Required() {
				req = ui.Warning.Render("required")
			}
			fmt.Fprintf(w, "  %s: %s  %s\n", a.Name, a.Type, req)
		}
	}
	if obj, ok := reg.Object(op.Returns.Name); ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.Muted.Render(obj.Name+" fields"))
		for _, f := range obj.Fields {
			fmt.Fprintf(w, "  %s: %s\n", f.Name, f.Type)
		}
	}
	return nil
}

// GetGraphQLSchema returns the GraphQL schema as a string.
func GetGraphQLSchema() string {
	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchema(graph.DefaultRegistry().AST())
	return buf.String()
}

func init() {
	graphqlCmd.Flags().BoolVar(&queryJSON, "json", false, "Output raw JSON (no formatting)")
	graphqlCmd.Flags().StringVarP(&queryVariables, "variables", "v", "", "Query variables as JSON string")
	graphqlCmd.Flags().StringVarP(&queryOperation, "operation", "o", "", "Operation name (for multi-operation documents)")
	graphqlCmd.Flags().BoolVar(&querySchemaOnly, "schema", false, "Print the GraphQL schema and exit")
	graphqlCmd.Flags().StringVar(&queryDescribe, "describe", "", "Describe a query or mutation by name and exit")
	graphqlCmd.Flags().StringVar(&queryAs, "as", "", "User id to resolve \"me\" as")
	rootCmd.AddCommand(graphqlCmd)
}
