package tz

// Embed the tz database so zone lookups work in minimal containers without OS tzdata.
import _ "time/tzdata"
