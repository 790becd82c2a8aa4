// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"strings"
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tubely/pkg/uuid"
)

/*
TestObjectName verifies names are v7 and keep the lower-cased extension.
*/
func TestObjectName(t *testing.T) {
	name := uuid.ObjectName("/tmp/upload/Avatar.PNG")
	require.True(t, strings.HasSuffix(name, ".png"), name)

	parsed, err := googleuuid.Parse(strings.TrimSuffix(name, ".png"))
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())

	assert.NotEqual(t, uuid.New(), uuid.New())
	assert.NotContains(t, uuid.ObjectName("noext"), ".")
}
