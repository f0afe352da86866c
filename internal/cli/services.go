package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newServicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Browse the service catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:         "list",
		Short:       "List available services",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/services"},
		RunE:        a.runServicesList,
	})
	return cmd
}

func (a *app) runServicesList(cmd *cobra.Command, args []string) error {
	services, err := a.client.ListServices(cmd.Context())
	if err != nil {
		return err
	}

	if ok, err := a.structured(map[string]any{
		"services": services,
		"count":    len(services),
	}); ok {
		return err
	}

	if len(services) == 0 {
		fmt.Fprintln(a.out, "No services found")
		return nil
	}
	t := newTable(a.out)
	printTableHeader(t, "ID", "NAME", "CATEGORY", "CERTIFICATION")
	for _, s := range services {
		cert := s.RequiresCertification
		if cert == "" {
			cert = "-"
		}
		fmt.Fprintf(t, "%d\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, cert)
	}
	return t.Flush()
}
