package irc

import (
	"fmt"
	"strings"
)

// Remote action lines for the chat-driven admin protocol the servers
// understand. Timed actions are expressed as generated Lua because the
// protocol itself has no timer support.

func kickLine(name, sender, reason string) string {
	return fmt.Sprintf("cmd kick %s By %s: %s", name, sender, reason)
}

func muteLine(name string) string {
	return fmt.Sprintf("cmd revoke %s shout", name)
}

func unmuteLine(name string) string {
	return fmt.Sprintf("cmd grant %s shout", name)
}

func unbanLine(name string) string {
	return fmt.Sprintf("cmd xunban %s", name)
}

func tempbanLine(name string, secs int, sender, reason string) string {
	return fmt.Sprintf("cmd xtempban %s %ds Banned by %s@IRC: %s", name, secs, sender, reason)
}

// tempmuteScript revokes shout and schedules the grant, also restoring
// it on server shutdown so a restart never leaves a player muted.
func tempmuteScript(name string, secs int) string {
	return fmt.Sprintf("cmd /lua local m=%s;"+
		`core.registered_chatcommands.revoke.func("trackr",m.." shout")`+
		"local function r() "+
		"if m then "+
		`core.registered_chatcommands.grant.func("trackr",m.." shout") `+
		"end "+
		"end "+
		"core.after(%d,r);"+
		"core.register_on_shutdown(r)", luaRepr(name), secs)
}

// warnPopupScript shows the in-game warning formspec to a player.
func warnPopupScript(name, msg string) string {
	return fmt.Sprintf(`cmd /lua core.show_formspec(%s,`+
		`"trackr:warning", "size[8,5;]image[0,0;1,1;bucket_lava.png]`+
		`image[7,0;1,1;bucket_lava.png]`+
		`label[1.25,0.25;WARNING - Please read carefully.]`+
		`label[0,1.25;" .. minetest.formspec_escape(%s) .. "]`+
		`button_exit[0,4.5;8,0.5;quit;Continue]`+
		`" .. (default.gui_bg or ""))`, luaRepr(name), luaRepr(msg))
}

// luaRepr renders a string as a valid Lua string literal. Anything
// outside printable ASCII becomes a decimal escape.
func luaRepr(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range []byte(s) {
		switch {
		case ch == '"':
			b.WriteString(`\"`)
		case ch == '\\':
			b.WriteString(`\\`)
		case ch > 0x1f && ch < 0x7f:
			b.WriteByte(ch)
		default:
			fmt.Fprintf(&b, "\\%03d", ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
