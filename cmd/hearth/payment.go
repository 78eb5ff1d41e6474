package main

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/hearth/internal/payment"
)

func newPaymentCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Manage the stored payment profile",
	}
	cmd.AddCommand(newPaymentShowCommand(opts))
	cmd.AddCommand(newPaymentAddCommand(opts))
	cmd.AddCommand(newPaymentDefaultCommand(opts))
	cmd.AddCommand(newPaymentRemoveCommand(opts))
	cmd.AddCommand(newPaymentStatusCommand(opts))
	cmd.AddCommand(newPaymentClearCommand(opts))
	cmd.AddCommand(newPaymentCheckoutCommand(opts))
	return cmd
}

type paymentView struct {
	Profile         payment.Profile `json:"profile"`
	Variant         payment.Variant `json:"variant"`
	HasValidProfile bool            `json:"has_valid_profile"`
}

func newPaymentShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show stored methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			return printProfile(cmd, opts, a.payment)
		},
	}
}

func printProfile(cmd *cobra.Command, opts *rootOptions, s *payment.ProfileStore) error {
	v := paymentView{Profile: s.Profile(), Variant: s.Variant(), HasValidProfile: s.HasValidProfile()}
	if opts.JSON {
		return printJSON(cmd.OutOrStdout(), v)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "Profile: %s\n", v.Variant)
	for _, m := range v.Profile.Methods {
		def := " "
		if m.IsDefault {
			def = "*"
		}
		lastUsed := "-"
		if !m.LastUsed.IsZero() {
			lastUsed = m.LastUsed.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", def, m.ID, m.DisplayName, m.Status, m.ExpiryDate, lastUsed)
	}
	return tw.Flush()
}

func parseMethodType(s string) (payment.MethodType, error) {
	t := payment.MethodType(s)
	if !slices.Contains(payment.MethodTypes, t) {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return t, nil
}

func newPaymentAddCommand(opts *rootOptions) *cobra.Command {
	var (
		typ, name, number, expiry string
		setDefault                bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a payment method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseMethodType(typ)
			if err != nil {
				return err
			}
			if name == "" {
				name = payment.DisplayName(t, number)
			}
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			m := a.payment.AddPaymentMethod(t, name, expiry, setDefault)
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", m.ID, m.DisplayName)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(payment.MethodCard), "method type")
	cmd.Flags().StringVar(&name, "name", "", "display name (default derived from type and number)")
	cmd.Flags().StringVar(&number, "number", "", "card number, only the last four digits are kept")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry date MM/YY")
	cmd.Flags().BoolVar(&setDefault, "default", false, "make this the default method")
	return cmd
}

func newPaymentDefaultCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "default <id>",
		Short: "Make a stored method the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.payment.SetDefaultMethod(args[0]) {
				return fmt.Errorf("payment method %q not found", args[0])
			}
			return printProfile(cmd, opts, a.payment)
		},
	}
}

func newPaymentRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a stored method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.payment.RemovePaymentMethod(args[0]) {
				return fmt.Errorf("payment method %q not found", args[0])
			}
			return printProfile(cmd, opts, a.payment)
		},
	}
}

func newPaymentStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <verified|expired|needs-update|error>",
		Short: "Set the verification status of a stored method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := payment.Status(args[1])
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.payment.UpdateMethodStatus(args[0], status) {
				return fmt.Errorf("payment method %q not found", args[0])
			}
			return printProfile(cmd, opts, a.payment)
		},
	}
}

func newPaymentClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			a.payment.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Payment profile cleared")
			return nil
		},
	}
}

type checkoutResult struct {
	Step      payment.Step         `json:"step"`
	Status    payment.ChargeStatus `json:"status,omitempty"`
	Reference string               `json:"reference,omitempty"`
	Message   string               `json:"message,omitempty"`
	Method    payment.MethodType   `json:"method"`
	Profile   payment.Variant      `json:"profile"`
}

func newPaymentCheckoutCommand(opts *rootOptions) *cobra.Command {
	var (
		amount, title, method string
		card                  payment.CardDetails
		noSave                bool
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Run a checkout against the simulated gateway",
		Long: `Run one checkout. --method saved pays with the default stored method;
any other method goes through method selection, and card also needs the
--card-* flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseAmount(amount)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			flow := payment.NewFlow(a.payment, a.gateway(), a.checkout(cents, title),
				payment.WithLogger(a.logger.With("component", "checkout")))
			flow.SetSaveMethod(!noSave)

			if method == "saved" {
				if err := flow.PayWithSaved(ctx); err != nil {
					return fmt.Errorf("pay with saved method: %w", err)
				}
			} else {
				t, err := parseMethodType(method)
				if err != nil {
					return err
				}
				if flow.Step() == payment.StepProfile {
					if err := flow.AddNewMethod(); err != nil {
						return err
					}
				}
				if err := flow.SelectMethod(ctx, t); err != nil {
					return err
				}
				if t == payment.MethodCard {
					if err := flow.SubmitCard(ctx, card); err != nil {
						return err
					}
				}
			}

			res := checkoutResult{
				Step:      flow.Step(),
				Status:    flow.Result().Status,
				Reference: flow.Result().Reference,
				Message:   flow.Message(),
				Method:    flow.Selected(),
				Profile:   a.payment.Variant(),
			}
			if opts.JSON {
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				switch res.Step {
				case payment.StepSuccess:
					fmt.Fprintf(cmd.OutOrStdout(), "Payment successful (%s)\n", res.Reference)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "Payment not completed: %s\n", res.Message)
				}
			}
			if res.Step != payment.StepSuccess {
				return fmt.Errorf("checkout ended in %s", res.Step)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "0.00", "amount in major units, e.g. 49.00")
	cmd.Flags().StringVar(&title, "title", "Checkout", "what is being paid for")
	cmd.Flags().StringVar(&method, "method", "saved", "saved or a method type")
	cmd.Flags().StringVar(&card.Number, "card-number", "", "card number")
	cmd.Flags().StringVar(&card.Name, "card-name", "", "name on card")
	cmd.Flags().StringVar(&card.Expiry, "card-expiry", "", "card expiry MM/YY")
	cmd.Flags().StringVar(&card.CVC, "card-cvc", "", "card security code")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the new method")
	return cmd
}

// parseAmount converts "49.5" or "49.50" into cents.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(math.Round(v * 100)), nil
}
