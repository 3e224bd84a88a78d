// Package listview provides the scrolling row list used by the comparison view.
//
// Only the rows inside the viewport plus a small buffer are rendered, so
// categories with thousands of permissions scroll without lag. Items can be
// replaced in place (after a filter change or an expand) while the cursor
// stays on the same row where possible.
package listview
