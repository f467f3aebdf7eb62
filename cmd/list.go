package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmans/coursegraph/internal/ui"
)

var (
	listJSON        bool
	listInstructors bool
)

// listQuery fetches everything the tree view shows in one round trip.
const listQuery = `{
  users {
    _id name email role
    courses { _id title price isFree isPublished }
  }
}`

type listData struct {
	Users []struct {
		ID      string `json:"_id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Role    string `json:"role"`
		Courses []struct {
			ID          string `json:"_id"`
			Title       string `json:"title"`
			Price       int    `json:"price"`
			IsFree      bool   `json:"isFree"`
			IsPublished bool   `json:"isPublished"`
		} `json:"courses"`
	} `json:"users"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users and the courses they teach",
	Long:    `Shows every user as a tree, with the courses they instruct nested underneath.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		b, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer b.Close(context.Background())

		result, err := executeQuery(ctx, b.resolver(), listQuery, nil, "")
		if err != nil {
			return err
		}

		if listJSON {
			fmt.Println(string(result))
			return nil
		}

		nodes, err := buildUserTree(result, listInstructors)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Println(ui.Muted.Render("No users found. Create some with: coursegraph seed"))
			return nil
		}

		fmt.Print(ui.RenderTree(nodes, [3]string{"ID", "ROLE", "NAME"}))
		return nil
	},
}

// buildUserTree turns a listQuery result into tree nodes. With instructorsOnly,
// users without courses are left out.
func buildUserTree(data []byte, instructorsOnly bool) ([]*ui.TreeNode, error) {
	var d listData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	var nodes []*ui.TreeNode
	for _, u := range d.Users {
		if instructorsOnly && len(u.Courses) == 0 {
			continue
		}
		node := &ui.TreeNode{
			ID:     u.ID,
			Label:  u.Name,
			Badge:  ui.RenderRole(u.Role),
			Detail: u.Email,
		}
		for _, c := range u.Courses {
			price := "free"
			if !c.IsFree {
				price = fmt.Sprintf("%d", c.Price)
			}
			node.Children = append(node.Children, &ui.TreeNode{
				ID:     c.ID,
				Label:  c.Title,
				Badge:  ui.RenderPublished(c.IsPublished),
				Detail: price,
			})
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output the raw query result as JSON")
	listCmd.Flags().BoolVar(&listInstructors, "instructors", false, "Only show users who teach at least one course")
	rootCmd.AddCommand(listCmd)
}
