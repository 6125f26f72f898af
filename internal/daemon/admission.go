package daemon

// admit reports whether a newly accepted connection may proceed, given the
// number of sessions already connected (spec §4.9: "when total connected
// clients would exceed max_clients, new accepts are immediately closed").
func admit(connected, maxClients int) bool {
	return connected < maxClients
}
