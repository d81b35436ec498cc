//go:build darwin && cgo

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework WebKit
#include <stdlib.h>
#import <Cocoa/Cocoa.h>
#import <WebKit/WebKit.h>

extern void goMenuSelected(int tag);
extern void goFullscreenSettled(void);

enum {
	WS_ROLE_HIDE = 1,
	WS_ROLE_FULLSCREEN,
	WS_ROLE_MINIMIZE,
	WS_ROLE_COPY,
	WS_ROLE_CUT,
	WS_ROLE_PASTE,
	WS_ROLE_UNDO,
	WS_ROLE_REDO,
	WS_ROLE_SELECT_ALL,
	WS_ROLE_QUIT,
};

enum {
	WS_MOD_CMD = 1 << 0,
	WS_MOD_SHIFT = 1 << 1,
	WS_MOD_ALT = 1 << 2,
	WS_MOD_CTRL = 1 << 3,
};

@interface WebshellMenuTarget : NSObject
- (void)fire:(id)sender;
@end

@implementation WebshellMenuTarget
- (void)fire:(id)sender {
	goMenuSelected((int)[sender tag]);
}
@end

static WebshellMenuTarget *webshellTarget = nil;

static NSEventModifierFlags webshell_mods(int mods) {
	NSEventModifierFlags flags = 0;
	if (mods & WS_MOD_CMD) flags |= NSEventModifierFlagCommand;
	if (mods & WS_MOD_SHIFT) flags |= NSEventModifierFlagShift;
	if (mods & WS_MOD_ALT) flags |= NSEventModifierFlagOption;
	if (mods & WS_MOD_CTRL) flags |= NSEventModifierFlagControl;
	return flags;
}

static void *webshell_menu_new(const char *title) {
	[NSApplication sharedApplication];
	NSMenu *menu = [[NSMenu alloc] initWithTitle:[NSString stringWithUTF8String:title]];
	[menu setAutoenablesItems:YES];
	return menu;
}

static void webshell_menu_add_submenu(void *parent, void *child, const char *title) {
	NSMenu *sub = (NSMenu *)child;
	NSMenuItem *item = [[NSMenuItem alloc] initWithTitle:[NSString stringWithUTF8String:title] action:nil keyEquivalent:@""];
	[item setSubmenu:sub];
	[(NSMenu *)parent addItem:item];
}

static void webshell_menu_add_separator(void *menu) {
	[(NSMenu *)menu addItem:[NSMenuItem separatorItem]];
}

static void webshell_menu_add_native(void *menu, int role) {
	NSString *title = nil;
	SEL action = nil;
	NSString *key = @"";
	NSEventModifierFlags mods = NSEventModifierFlagCommand;
	switch (role) {
	case WS_ROLE_HIDE: title = @"Hide"; action = @selector(hide:); key = @"h"; break;
	case WS_ROLE_FULLSCREEN:
		title = @"Enter Full Screen"; action = @selector(toggleFullScreen:); key = @"f";
		mods |= NSEventModifierFlagControl;
		break;
	case WS_ROLE_MINIMIZE: title = @"Minimize"; action = @selector(performMiniaturize:); key = @"m"; break;
	case WS_ROLE_COPY: title = @"Copy"; action = @selector(copy:); key = @"c"; break;
	case WS_ROLE_CUT: title = @"Cut"; action = @selector(cut:); key = @"x"; break;
	case WS_ROLE_PASTE: title = @"Paste"; action = @selector(paste:); key = @"v"; break;
	case WS_ROLE_UNDO: title = @"Undo"; action = NSSelectorFromString(@"undo:"); key = @"z"; break;
	case WS_ROLE_REDO:
		title = @"Redo"; action = NSSelectorFromString(@"redo:"); key = @"z";
		mods |= NSEventModifierFlagShift;
		break;
	case WS_ROLE_SELECT_ALL: title = @"Select All"; action = @selector(selectAll:); key = @"a"; break;
	case WS_ROLE_QUIT: title = @"Quit"; action = @selector(terminate:); key = @"q"; break;
	default: return;
	}
	NSMenuItem *item = [[NSMenuItem alloc] initWithTitle:title action:action keyEquivalent:key];
	[item setKeyEquivalentModifierMask:mods];
	[(NSMenu *)menu addItem:item];
}

static void webshell_menu_add_custom(void *menu, const char *label, const char *key, int mods, int tag) {
	if (webshellTarget == nil) {
		webshellTarget = [[WebshellMenuTarget alloc] init];
	}
	NSMenuItem *item = [[NSMenuItem alloc] initWithTitle:[NSString stringWithUTF8String:label]
		action:@selector(fire:)
		keyEquivalent:[NSString stringWithUTF8String:key]];
	[item setKeyEquivalentModifierMask:webshell_mods(mods)];
	[item setTarget:webshellTarget];
	[item setTag:tag];
	[(NSMenu *)menu addItem:item];
}

static void webshell_menu_install(void *menu) {
	[NSApp setMainMenu:(NSMenu *)menu];
}

static void webshell_configure_window(void *w, int transparent) {
	NSWindow *win = (NSWindow *)w;
	[win setStyleMask:[win styleMask] | NSWindowStyleMaskFullSizeContentView];
	[win setTitleVisibility:NSWindowTitleHidden];
	[win setTitlebarAppearsTransparent:transparent ? YES : NO];
	[win setCollectionBehavior:[win collectionBehavior] | NSWindowCollectionBehaviorFullScreenPrimary];
	[[win standardWindowButton:NSWindowCloseButton] setHidden:NO];
	[[win standardWindowButton:NSWindowMiniaturizeButton] setHidden:NO];
	[[win standardWindowButton:NSWindowZoomButton] setHidden:NO];

	NSNotificationCenter *nc = [NSNotificationCenter defaultCenter];
	NSArray *names = @[NSWindowDidEnterFullScreenNotification, NSWindowDidExitFullScreenNotification];
	for (NSNotificationName name in names) {
		[nc addObserverForName:name object:win queue:nil usingBlock:^(NSNotification *note) {
			goFullscreenSettled();
		}];
	}
}

static void webshell_content_size(void *w, double *width, double *height) {
	NSRect frame = [[(NSWindow *)w contentView] frame];
	*width = frame.size.width;
	*height = frame.size.height;
}

static int webshell_resizable(void *w) {
	return ([(NSWindow *)w styleMask] & NSWindowStyleMaskResizable) != 0;
}

static int webshell_is_fullscreen(void *w) {
	return ([(NSWindow *)w styleMask] & NSWindowStyleMaskFullScreen) != 0;
}

static void webshell_toggle_fullscreen(void *w) {
	[(NSWindow *)w toggleFullScreen:nil];
}

static int webshell_start_drag(void *w) {
	NSEvent *ev = [NSApp currentEvent];
	if (ev == nil) {
		return 0;
	}
	[(NSWindow *)w performWindowDragWithEvent:ev];
	return 1;
}

static void webshell_set_minimized(void *w, int on) {
	NSWindow *win = (NSWindow *)w;
	if (on) {
		[win miniaturize:nil];
	} else {
		[win deminiaturize:nil];
	}
}

static WKWebView *webshell_find_webview(NSView *view) {
	if ([view isKindOfClass:[WKWebView class]]) {
		return (WKWebView *)view;
	}
	for (NSView *sub in [view subviews]) {
		WKWebView *found = webshell_find_webview(sub);
		if (found != nil) {
			return found;
		}
	}
	return nil;
}

static int webshell_show_inspector(void *w) {
	WKWebView *view = webshell_find_webview([(NSWindow *)w contentView]);
	if (view == nil) {
		return 0;
	}
	SEL inspectorSel = NSSelectorFromString(@"_inspector");
	SEL showSel = NSSelectorFromString(@"show");
	if (![view respondsToSelector:inspectorSel]) {
		return 0;
	}
	id inspector = [view performSelector:inspectorSel];
	if (inspector == nil || ![inspector respondsToSelector:showSel]) {
		return 0;
	}
	[inspector performSelector:showSel];
	return 1;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/menu"
	webview "github.com/webview/webview_go"
)

type darwinPlatform struct {
	opts   Options
	logger *slog.Logger
	menu   unsafe.Pointer
}

var _ Platform = (*darwinPlatform)(nil)

// New returns the Cocoa/WebKit platform.
func New(opts Options) (Platform, error) {
	return &darwinPlatform{opts: opts, logger: opts.logger()}, nil
}

func (p *darwinPlatform) BootstrapVariant() bootstrap.Variant {
	return bootstrap.VariantMac
}

var nativeRoles = map[menu.Role]C.int{
	menu.RoleHide:            C.WS_ROLE_HIDE,
	menu.RoleEnterFullScreen: C.WS_ROLE_FULLSCREEN,
	menu.RoleMinimize:        C.WS_ROLE_MINIMIZE,
	menu.RoleCopy:            C.WS_ROLE_COPY,
	menu.RoleCut:             C.WS_ROLE_CUT,
	menu.RolePaste:           C.WS_ROLE_PASTE,
	menu.RoleUndo:            C.WS_ROLE_UNDO,
	menu.RoleRedo:            C.WS_ROLE_REDO,
	menu.RoleSelectAll:       C.WS_ROLE_SELECT_ALL,
	menu.RoleQuit:            C.WS_ROLE_QUIT,
}

// BuildMenu renders m into an NSMenu. It becomes the main menu once the
// window exists, since creating the web view resets the application menu.
func (p *darwinPlatform) BuildMenu(m *menu.Model, onSelect func(string)) error {
	if m == nil {
		return errors.New("menu model is nil")
	}
	menuIDs = menuIDs[:0]
	menuSelect = onSelect

	root := newNSMenu("")
	if err := p.addItems(root, m.Items()); err != nil {
		return err
	}
	p.menu = root
	return nil
}

func (p *darwinPlatform) addItems(parent unsafe.Pointer, items []menu.Item) error {
	for _, it := range items {
		switch it.Role {
		case menu.RoleSubmenu:
			sub := newNSMenu(it.Label)
			if err := p.addItems(sub, it.Children); err != nil {
				return err
			}
			title := C.CString(it.Label)
			C.webshell_menu_add_submenu(parent, sub, title)
			C.free(unsafe.Pointer(title))
		case menu.RoleSeparator:
			C.webshell_menu_add_separator(parent)
		case menu.RoleCustom:
			tag := len(menuIDs)
			menuIDs = append(menuIDs, it.ID)
			label := C.CString(it.Label)
			key := C.CString(it.Accelerator.Key)
			C.webshell_menu_add_custom(parent, label, key, C.int(it.Accelerator.Mods), C.int(tag))
			C.free(unsafe.Pointer(label))
			C.free(unsafe.Pointer(key))
		default:
			role, ok := nativeRoles[it.Role]
			if !ok {
				return fmt.Errorf("unsupported menu role %q", it.Role)
			}
			C.webshell_menu_add_native(parent, role)
		}
	}
	return nil
}

func newNSMenu(title string) unsafe.Pointer {
	ct := C.CString(title)
	defer C.free(unsafe.Pointer(ct))
	return C.webshell_menu_new(ct)
}

func (p *darwinPlatform) BuildWindow(spec config.WindowSpec) (Window, error) {
	wv, err := newWebView(spec, p.opts.Devtools)
	if err != nil {
		return nil, err
	}
	handle := wv.Window()
	transparent := 0
	if spec.Transparent {
		transparent = 1
	}
	C.webshell_configure_window(handle, C.int(transparent))
	if p.menu != nil {
		C.webshell_menu_install(p.menu)
	}

	w := &darwinWindow{wv: wv, handle: handle}
	fullscreenSettled = w.fullscreen.settle
	if spec.Fullscreen {
		// toggleFullScreen is ignored until the run loop has started.
		w.fullscreen.request(true)
		wv.Dispatch(func() {
			if C.webshell_is_fullscreen(handle) == 0 {
				C.webshell_toggle_fullscreen(handle)
			}
		})
	}
	p.logger.Debug("window created", "width", spec.Width, "height", spec.Height, "transparent", spec.Transparent)
	return w, nil
}

func (p *darwinPlatform) AttachSurface(win Window, opts SurfaceOptions) (Surface, error) {
	w, ok := win.(*darwinWindow)
	if !ok {
		return nil, fmt.Errorf("window %T was not built by this platform", win)
	}
	if err := w.slot.claim(); err != nil {
		return nil, err
	}
	inspect := func() error {
		if C.webshell_show_inspector(w.handle) == 0 {
			return errors.New("web inspector is not available")
		}
		return nil
	}
	return attachWebView(w.wv, opts, inspect, p.logger)
}

type darwinWindow struct {
	wv     webview.WebView
	handle unsafe.Pointer
	slot   surfaceSlot

	fullscreen fullscreenState
}

func (w *darwinWindow) Size() (float64, float64) {
	var width, height C.double
	C.webshell_content_size(w.handle, &width, &height)
	return float64(width), float64(height)
}

func (w *darwinWindow) Resizable() bool {
	return C.webshell_resizable(w.handle) != 0
}

// IsFullscreen reads the style mask. It only changes once the fullscreen
// animation has finished, so a request in flight stands in until the window
// posts its did-enter or did-exit notification.
func (w *darwinWindow) IsFullscreen() bool {
	return w.fullscreen.resolve(C.webshell_is_fullscreen(w.handle) != 0, nil)
}

func (w *darwinWindow) SetFullscreen(on bool) error {
	if on == w.IsFullscreen() {
		return nil
	}
	C.webshell_toggle_fullscreen(w.handle)
	w.fullscreen.request(on)
	return nil
}

func (w *darwinWindow) StartDrag() error {
	if C.webshell_start_drag(w.handle) == 0 {
		return errors.New("no current event to drag with")
	}
	return nil
}

func (w *darwinWindow) SetMinimized(on bool) error {
	v := 0
	if on {
		v = 1
	}
	C.webshell_set_minimized(w.handle, C.int(v))
	return nil
}
