package toast

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
)

type Props struct {
	Title       string
	Description string
	Variant     Variant
	Icon        bool
	Dismissible bool
	Class       string
}

var variantClasses = map[Variant]string{
	VariantDefault: "border-gray-200 bg-white text-gray-900 dark:border-gray-700 dark:bg-gray-800 dark:text-gray-100",
	VariantSuccess: "border-green-200 bg-green-50 text-green-900 dark:border-green-800 dark:bg-green-950 dark:text-green-100",
	VariantError:   "border-red-200 bg-red-50 text-red-900 dark:border-red-800 dark:bg-red-950 dark:text-red-100",
	VariantWarning: "border-amber-200 bg-amber-50 text-amber-900 dark:border-amber-800 dark:bg-amber-950 dark:text-amber-100",
}

var icons = map[Variant]string{
	VariantDefault: "ℹ",
	VariantSuccess: "✓",
	VariantError:   "✕",
	VariantWarning: "!",
}

const baseClass = "pointer-events-auto flex w-80 items-start gap-3 rounded-lg border p-4 shadow-lg"

func role(v Variant) string {
	if v == VariantError {
		return "alert"
	}
	return "status"
}

func Toast(p Props) templ.Component {
	if p.Variant == "" {
		p.Variant = VariantDefault
	}
	p.Class = twmerge.Merge(baseClass, variantClasses[p.Variant], p.Class)
	return toast(p)
}

func Success(description string) templ.Component {
	return Toast(Props{Title: "Success", Description: description, Variant: VariantSuccess, Icon: true, Dismissible: true})
}

func Error(description string) templ.Component {
	return Toast(Props{Title: "Error", Description: description, Variant: VariantError, Icon: true, Dismissible: true})
}

func Warning(description string) templ.Component {
	return Toast(Props{Title: "Heads up", Description: description, Variant: VariantWarning, Icon: true, Dismissible: true})
}
