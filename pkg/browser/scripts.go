package browser

// snapshotScript stamps every element with a ref and its measurements and
// returns the annotated outerHTML. Refs are reassigned on every call.
const snapshotScript = `() => {
  let i = 0;
  for (const el of document.querySelectorAll('*')) {
    el.setAttribute('data-nlm-ref', String(i++));
    const r = el.getBoundingClientRect();
    el.setAttribute('data-nlm-box', r.width + ',' + r.height);
    const s = window.getComputedStyle(el);
    el.setAttribute('data-nlm-style', s.display + ';' + s.visibility + ';' + s.opacity);
    if (el instanceof HTMLInputElement || el instanceof HTMLTextAreaElement || el instanceof HTMLSelectElement) {
      el.setAttribute('data-nlm-value', el.value);
    }
    if (el.disabled === true) {
      el.setAttribute('data-nlm-disabled', '');
    } else {
      el.removeAttribute('data-nlm-disabled');
    }
  }
  return document.documentElement.outerHTML;
}`

// staleMarker is returned by actScript when the ref is not in the page.
const staleMarker = "__nlm_stale__"

// actScript performs one low-level action. It takes a single argument
// object {op, ref, type, key, command, value} and always returns a string.
const actScript = `(a) => {
  if (a.op === 'exec') {
    return String(document.execCommand(a.command, false, a.value === '' ? null : a.value));
  }
  const el = document.querySelector('[data-nlm-ref="' + a.ref + '"]');
  if (!el) return '` + staleMarker + `';
  switch (a.op) {
    case 'scroll':
      el.scrollIntoView({ block: 'nearest', inline: 'nearest' });
      return '';
    case 'dispatch': {
      const opts = { bubbles: true, cancelable: true, view: window };
      let ev;
      if (a.type.startsWith('pointer')) ev = new PointerEvent(a.type, opts);
      else if (a.type.startsWith('mouse')) ev = new MouseEvent(a.type, opts);
      else if (a.type.startsWith('key')) ev = new KeyboardEvent(a.type, Object.assign({ key: a.key, code: a.key }, opts));
      else ev = new Event(a.type, { bubbles: true });
      el.dispatchEvent(ev);
      return '';
    }
    case 'click':
      el.click();
      return '';
    case 'focus':
      el.focus();
      return '';
    case 'set':
      el.value = a.value;
      return '';
    case 'value':
      return String(el.value == null ? '' : el.value);
  }
  return '';
}`

// action is the argument object passed to actScript.
type action struct {
	Op      string `json:"op"`
	Ref     int    `json:"ref"`
	Type    string `json:"type"`
	Key     string `json:"key"`
	Command string `json:"command"`
	Value   string `json:"value"`
}

// asMap converts the action for engines that marshal map arguments.
func (a action) asMap() map[string]interface{} {
	return map[string]interface{}{
		"op":      a.Op,
		"ref":     a.Ref,
		"type":    a.Type,
		"key":     a.Key,
		"command": a.Command,
		"value":   a.Value,
	}
}
