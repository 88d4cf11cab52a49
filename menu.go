package book2pdf

import (
	"context"
	"encoding/json"
	"fmt"
)

// menuSelectors match collapsed navigation entries. GitBook first, then
// Docusaurus.
var menuSelectors = []string{
	`a[data-rnwrdesktop-fnigne="true"] > div[tabindex="0"]`,
	`button[aria-expanded="false"]`,
	`button[data-state="closed"]`,
	`[role="button"][aria-expanded="false"]`,

	`.menu__list-item--collapsed > .menu__link`,
	`.menu__link--sublist[aria-expanded="false"]`,
	`button.menu__link--sublist`,
	`.theme-doc-sidebar-item-category button[aria-expanded="false"]`,
	`.menu__caret`,
	`[class*="collapsible"] button[aria-expanded="false"]`,
	`.menu__list-item--collapsed`,
}

// expandMenusJS clicks every match of every selector. Matches are gathered
// once per selector before clicking, so entries revealed by a click are not
// revisited. It resolves to the number of clicks.
var expandMenusJS = fmt.Sprintf(`() => {
	const selectors = %s;
	let clicked = 0;
	for (const selector of selectors) {
		const nodes = Array.from(document.querySelectorAll(selector));
		for (const node of nodes) {
			try {
				node.click();
				clicked++;
			} catch (e) {}
		}
	}
	return clicked;
}`, jsArray(menuSelectors))

// ExpandMenus clicks collapsed navigation entries on page and returns how
// many clicks were issued. The count is advisory; only a failed evaluation is
// an error. Callers wait for the menu to settle afterwards.
func ExpandMenus(ctx context.Context, page Page) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var clicked int
	if err := evalJSON(page, expandMenusJS, &clicked); err != nil {
		return 0, err
	}
	return clicked, nil
}

// jsArray renders values as a JavaScript array literal.
func jsArray(values []string) string {
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}
