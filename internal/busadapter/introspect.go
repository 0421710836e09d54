package busadapter

const introspectXML = `<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
 "http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node>
  <interface name="org.freedesktop.NativeMessagingProxy">
    <method name="GetManifest">
      <arg type="s" name="name" direction="in"/>
      <arg type="s" name="mode" direction="in"/>
      <arg type="a{sv}" name="options" direction="in"/>
      <arg type="ay" name="manifest" direction="out"/>
    </method>
    <method name="Start">
      <arg type="s" name="name" direction="in"/>
      <arg type="s" name="extension_or_origin" direction="in"/>
      <arg type="s" name="mode" direction="in"/>
      <arg type="a{sv}" name="options" direction="in"/>
      <arg type="h" name="stdin" direction="out"/>
      <arg type="h" name="stdout" direction="out"/>
      <arg type="h" name="stderr" direction="out"/>
      <arg type="s" name="handle" direction="out"/>
    </method>
    <method name="Close">
      <arg type="s" name="handle" direction="in"/>
      <arg type="a{sv}" name="options" direction="in"/>
    </method>
    <signal name="Closed">
      <arg type="s" name="handle"/>
      <arg type="a{sv}" name="options"/>
    </signal>
    <property name="Version" type="u" access="read"/>
  </interface>
  <interface name="org.freedesktop.DBus.Introspectable">
    <method name="Introspect">
      <arg type="s" name="xml_data" direction="out"/>
    </method>
  </interface>
  <interface name="org.freedesktop.DBus.Properties">
    <method name="Get">
      <arg type="s" name="interface_name" direction="in"/>
      <arg type="s" name="property_name" direction="in"/>
      <arg type="v" name="value" direction="out"/>
    </method>
    <method name="GetAll">
      <arg type="s" name="interface_name" direction="in"/>
      <arg type="a{sv}" name="properties" direction="out"/>
    </method>
  </interface>
  <interface name="org.freedesktop.DBus.Peer">
    <method name="Ping"/>
  </interface>
</node>`
