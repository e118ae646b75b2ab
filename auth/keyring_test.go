package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestToken(t *testing.T) {
	Convey("Given a mock keyring", t, func() {
		keyring.MockInit()

		Convey("A missing token should report not found", func() {
			_, err := GetToken()
			So(err, ShouldEqual, keyring.ErrNotFound)
		})

		Convey("A saved token should be read back and deleted", func() {
			So(SetToken("s3cret"), ShouldBeNil)

			token, err := GetToken()
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "s3cret")

			So(DeleteToken(), ShouldBeNil)
			_, err = GetToken()
			So(err, ShouldEqual, keyring.ErrNotFound)
		})
	})
}
